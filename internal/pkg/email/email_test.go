package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNotification_Escapes(t *testing.T) {
	body, err := render(notificationTmpl, mailData{
		Name:    "Jane",
		Title:   "Request approved",
		Message: `<script>alert("x")</script>`,
		Link:    "http://localhost:8080/stagiaire",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, `href="http://localhost:8080/stagiaire"`)
}

func TestAbsoluteLink(t *testing.T) {
	s := &EmailServiceImpl{config: SMTPConfig{BaseURL: "https://interns.example.com/"}}
	assert.Equal(t, "https://interns.example.com/stagiaire", s.absoluteLink("/stagiaire"))
	assert.Equal(t, "https://other.example.com/x", s.absoluteLink("https://other.example.com/x"))
	assert.Empty(t, s.absoluteLink(""))
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	s := &EmailServiceImpl{config: SMTPConfig{FromName: "InternHub", FromEmail: "noreply@example.com"}}
	msg := string(s.buildMessage("a@example.com", "Hi\r\nBcc: evil@example.com", "<p>x</p>"))
	assert.Contains(t, msg, "Subject: Hi  Bcc: evil@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
}

func TestSend_WithoutCredentialsIsNoop(t *testing.T) {
	svc := NewEmailService(SMTPConfig{}, zerolog.Nop())
	assert.NoError(t, svc.SendNotificationEmail("a@example.com", "A", "t", "m", ""))
	assert.NoError(t, svc.SendWelcomeEmail("a@example.com", "A"))
}
