package core

import (
	"bytes"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/abdel28fr/ecole-pwa/assets"
)

const (
	emailTemplatesDir = "templates/email"
	layoutName        = "base"

	textExt = ".txt"
	htmlExt = ".gohtml"
)

// layoutTemplate is satisfied by both text and html templates.
type layoutTemplate interface {
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

var emailTemplates = struct {
	sync.RWMutex
	appName string
	byName  map[string]map[string]layoutTemplate // {name: {ext: template}}
}{}

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // plain text body, used instead of a template

		TemplateName string // without extension
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// TemplateContext is what email templates are executed with.
	TemplateContext struct {
		AppName string
		Data    interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) execute(ext string) (string, error) {
	emailTemplates.RLock()
	tmpl, ok := emailTemplates.byName[m.TemplateName][ext]
	tmplCtx := TemplateContext{AppName: emailTemplates.appName, Data: m.TemplateData}
	emailTemplates.RUnlock()
	if !ok {
		return "", errors.Errorf("email template %q not found", m.TemplateName+ext)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutName, tmplCtx); err != nil {
		return "", errors.Wrap(err, m.TemplateName+ext)
	}
	return buf.String(), nil
}

// Render fills the text and html contents of the message from its template.
func (m *EmailMessage) Render() (err error) {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}
	if m.TextContent, err = m.execute(textExt); err != nil {
		return err
	}
	m.TextContent = strings.TrimSpace(m.TextContent)
	m.HTMLContent, err = m.execute(htmlExt)
	return err
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" || m.HTMLContent != "" }

// IsSendable reports whether the message has someone to go to and something to say.
func (m *EmailMessage) IsSendable() bool { return m.HasRecipients() && m.HasContent() }

func parseEmailTemplate(ext, layout, file string, strict bool) (layoutTemplate, error) {
	if ext == textExt {
		tmpl, err := texttmpl.ParseFS(appfs.FS, layout, file)
		if err == nil && strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		return tmpl, err
	}
	tmpl, err := htmltmpl.ParseFS(appfs.FS, layout, file)
	if err == nil && strict {
		tmpl = tmpl.Option("missingkey=error")
	}
	return tmpl, err
}

// ParseEmailTemplates parses the embedded email templates.
// Every `<name>.txt` and `<name>.gohtml` file is parsed along with the `_base` layout of the same extension.
func ParseEmailTemplates(conf *Config, logger Logger) {
	files, err := fs.Glob(appfs.FS, path.Join(emailTemplatesDir, "*"))
	if err != nil {
		logger.Error("parsing email templates", errors.Wrap(err, "listing templates"))
	}

	strict := conf.Debug || conf.TestMode
	byName := make(map[string]map[string]layoutTemplate)
	for _, file := range files {
		base := path.Base(file)
		ext := path.Ext(base)
		if strings.HasPrefix(base, "_") || (ext != textExt && ext != htmlExt) {
			continue
		}

		layout := path.Join(emailTemplatesDir, "_base"+ext)
		tmpl, err := parseEmailTemplate(ext, layout, file, strict)
		if err != nil {
			logger.Error("parsing email templates", errors.Wrap(err, file))
			continue
		}
		name := strings.TrimSuffix(base, ext)
		if byName[name] == nil {
			byName[name] = make(map[string]layoutTemplate, 2)
		}
		byName[name][ext] = tmpl
	}

	emailTemplates.Lock()
	emailTemplates.byName = byName
	emailTemplates.appName = conf.AppName
	emailTemplates.Unlock()
}
