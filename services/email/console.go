package emailsvc

import (
	"fmt"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
)

// outbox records the messages handed over by console services.
var outbox struct {
	sync.Mutex
	messages []core.EmailMessage
}

// ResetSentMessages empties the outbox.
func ResetSentMessages() {
	outbox.Lock()
	outbox.messages = outbox.messages[:0]
	outbox.Unlock()
}

// LastSentMessage returns the last message sent by a console service.
func LastSentMessage() (core.EmailMessage, bool) {
	outbox.Lock()
	defer outbox.Unlock()
	if len(outbox.messages) == 0 {
		return core.EmailMessage{}, false
	}
	return outbox.messages[len(outbox.messages)-1], true
}

// consoleService writes messages to the logger instead of delivering them.
type consoleService struct {
	from       mail.Address
	subjPrefix string
	logger     core.Logger
	quiet      bool
	sync       bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{
		from:       conf.DefaultFromEmail,
		subjPrefix: subjectPrefix(conf),
		logger:     logger,
	}
}

// NewConsoleServiceMock returns a console service sending synchronously and without output.
func NewConsoleServiceMock(conf *core.Config, logger core.Logger) core.EmailService {
	svc := NewConsoleService(conf, logger).(*consoleService)
	svc.quiet = true
	svc.sync = true
	return svc
}

func subjectPrefix(conf *core.Config) string {
	return "[" + conf.AppName + "] "
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sync {
			svc.deliver(msg)
		} else {
			go svc.deliver(msg)
		}
	}
}

func (svc *consoleService) deliver(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.logger.Error("rendering email", errors.Wrap(err, msg.Subject))
		return
	}
	if !msg.IsSendable() {
		return
	}

	mime, err := svc.format(*msg)
	if err != nil {
		svc.logger.Error("formatting email", errors.Wrap(err, msg.Subject))
		return
	}
	if !svc.quiet {
		svc.logger.Info(mime)
	}

	outbox.Lock()
	outbox.messages = append(outbox.messages, *msg)
	outbox.Unlock()
}

// format renders msg as a multipart/alternative MIME message.
func (svc *consoleService) format(msg core.EmailMessage) (string, error) {
	var b strings.Builder
	w := multipart.NewWriter(&b)

	header := [][2]string{
		{"From", svc.from.String()},
		{"To", joinAddresses(msg.To)},
		{"Cc", joinAddresses(msg.Cc)},
		{"Bcc", joinAddresses(msg.Bcc)},
		{"Subject", svc.subjPrefix + msg.Subject},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + w.Boundary()},
	}
	for _, h := range header {
		if h[1] != "" {
			_, _ = fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
		}
	}
	b.WriteString("\r\n")

	parts := [][2]string{{"text/plain; charset=utf-8", msg.TextContent}, {"text/html; charset=utf-8", msg.HTMLContent}}
	for _, p := range parts {
		if p[1] == "" {
			continue
		}
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {p[0]}})
		if err != nil {
			return "", errors.Wrap(err, "creating "+p[0]+" part")
		}
		_, _ = fmt.Fprintf(pw, "%s\r\n", p[1])
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}
