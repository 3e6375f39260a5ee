package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService sends the transactional mails of the application
type EmailService interface {
	SendNotificationEmail(toEmail, toName, title, message, link string) error
	SendWelcomeEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for the application
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

var notificationTmpl = template.Must(template.New("notification").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">{{.Title}}</h2>
		<p>Hello {{.Name}},</p>
		<p>{{.Message}}</p>
		{{if .Link}}<p><a href="{{.Link}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Open</a></p>{{end}}
		<p>Best regards,<br>The InternHub Team</p>
	</div>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Welcome to InternHub!</h2>
		<p>Hello {{.Name}},</p>
		<p>Your account is ready. You can sign in at <a href="{{.Link}}">{{.Link}}</a>.</p>
		<p>Best regards,<br>The InternHub Team</p>
	</div>
</body>
</html>`))

type mailData struct {
	Name    string
	Title   string
	Message string
	Link    string
}

// absoluteLink turns an application path into a URL on BaseURL
func (s *EmailServiceImpl) absoluteLink(link string) string {
	if link == "" || strings.Contains(link, "://") {
		return link
	}
	return strings.TrimRight(s.config.BaseURL, "/") + "/" + strings.TrimLeft(link, "/")
}

func render(t *template.Template, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// configured reports whether SMTP credentials are present
func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendNotificationEmail mirrors an in-app notification by mail
func (s *EmailServiceImpl) SendNotificationEmail(toEmail, toName, title, message, link string) error {
	if !s.configured() {
		s.logger.Debug().Str("toEmail", toEmail).Str("title", title).
			Msg("SMTP credentials not configured - notification email not sent")
		return nil
	}

	body, err := render(notificationTmpl, mailData{Name: toName, Title: title, Message: message, Link: s.absoluteLink(link)})
	if err != nil {
		return err
	}
	return s.sendHTMLEmail(toEmail, title, body)
}

// SendWelcomeEmail greets a newly provisioned user
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Str("toName", toName).
			Msg("SMTP credentials not configured - welcome email not sent.")
		return nil
	}

	body, err := render(welcomeTmpl, mailData{Name: toName, Link: s.absoluteLink("/auth/login")})
	if err != nil {
		return err
	}
	return s.sendHTMLEmail(toEmail, "Welcome to InternHub", body)
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", strings.NewReplacer("\r", " ", "\n", " ").Replace(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := s.buildMessage(toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
