package core

import (
	"fmt"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errLogger struct{ errs []string }

func (l *errLogger) Debug(string, ...interface{}) {}
func (l *errLogger) Info(string, ...interface{})  {}
func (l *errLogger) Warn(string, ...interface{})  {}
func (l *errLogger) Error(msg string, args ...interface{}) {
	l.errs = append(l.errs, fmt.Sprint(append([]interface{}{msg}, args...)...))
}
func (l *errLogger) Fatal(string, ...interface{}) {}

type noticeData struct {
	Academy struct {
		AcademyName, AcademyPhone, AcademyEmail, AcademyAddress string
	}
	Payment struct {
		Year     int
		IsPaid   bool
		PaidDate string
		Notes    string
	}
	StudentName, ClassName, MonthName, Amount string
}

func TestEmailMessageRender(t *testing.T) {
	logger := &errLogger{}
	ParseEmailTemplates(&Config{AppName: "Najm Plus", TestMode: true}, logger)
	require.Empty(t, logger.errs)

	data := noticeData{StudentName: "Amine Haddad", ClassName: "5th grade", MonthName: "October", Amount: "500.00"}
	data.Academy.AcademyName = "Najm Plus Academy"
	data.Payment.Year = 2024

	t.Run("payment notice", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "payment_notice", TemplateData: data}
		require.NoError(t, msg.Render())
		assert.Contains(t, msg.TextContent, "Amine Haddad (5th grade)")
		assert.Contains(t, msg.TextContent, "Month: October 2024")
		assert.Contains(t, msg.TextContent, "Status: unpaid")
		assert.Contains(t, msg.TextContent, "Najm Plus")
		assert.Contains(t, msg.HTMLContent, "<strong>Amine Haddad</strong>")
		assert.False(t, msg.IsSendable(), "no recipients")

		msg.To = []mail.Address{{Address: "amine@example.com"}}
		assert.True(t, msg.IsSendable())
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "welcome", To: []mail.Address{{Address: "amine@example.com"}}}
		assert.EqualError(t, msg.Render(), `email template "welcome.txt" not found`)
		assert.False(t, msg.IsSendable())
	})

	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{BodyStr: "Hello"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "Hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
	})
}
