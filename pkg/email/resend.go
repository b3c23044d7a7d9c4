package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/config"
)

type EmailService struct {
	client      *resend.Client
	from        string
	fromName    string
	frontendURL string
	log         *zap.Logger

	welcomeTmpl *template.Template
	resetTmpl   *template.Template
}

func NewEmailService(cfg *config.Config, log *zap.Logger) *EmailService {
	return &EmailService{
		client:      resend.NewClient(cfg.Email.APIKey),
		from:        cfg.Email.FromAddress,
		fromName:    cfg.Email.FromName,
		frontendURL: cfg.Email.FrontendURL,
		log:         log,
		welcomeTmpl: template.Must(template.New("welcome").Parse(welcomeHTML)),
		resetTmpl:   template.Must(template.New("reset").Parse(resetHTML)),
	}
}

func (s *EmailService) SendWelcomeEmail(email, fullName string) error {
	html, err := s.render(s.welcomeTmpl, map[string]interface{}{
		"FullName": fullName,
		"Year":     time.Now().Year(),
	})
	if err != nil {
		return err
	}

	return s.send(email, "Welcome to FlipFlow!", html)
}

func (s *EmailService) SendPasswordResetEmail(email, resetToken string) error {
	html, err := s.render(s.resetTmpl, map[string]interface{}{
		"ResetLink": s.frontendURL + "/reset-password?token=" + resetToken,
		"Year":      time.Now().Year(),
	})
	if err != nil {
		return err
	}

	return s.send(email, "Reset Your Password - FlipFlow", html)
}

func (s *EmailService) render(tmpl *template.Template, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}

func (s *EmailService) send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.log.Warn("failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}

	s.log.Info("email sent", zap.String("to", to), zap.String("id", resp.Id))
	return nil
}

const welcomeHTML = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif">
  <h2>Welcome to FlipFlow, {{.FullName}}!</h2>
  <p>Upload a PDF and turn it into an interactive flipbook in seconds.</p>
  <p>&copy; {{.Year}} FlipFlow</p>
</body>
</html>`

const resetHTML = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif">
  <h2>Reset your password</h2>
  <p><a href="{{.ResetLink}}">Click here to choose a new password.</a>
     The link expires in 15 minutes.</p>
  <p>If you didn't request this, you can ignore this email.</p>
  <p>&copy; {{.Year}} FlipFlow</p>
</body>
</html>`
