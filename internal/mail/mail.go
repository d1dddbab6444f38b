// Package mail sends the account emails over SMTP
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/mohitgusain8671/VoiceNote/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrInvalidRecipient = errors.New("invalid email address")

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<h2>Email Verification</h2>
<p>Please click the link below to verify your email:</p>
<a href="{{.}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Email</a>
<p>Or copy and paste this link in your browser:</p>
<p>{{.}}</p>
<p>This link will expire in 12 hours.</p>`))

	otpTmpl = template.Must(template.New("otp").Parse(`<h2>Password Reset OTP</h2>
<p>Your OTP for password reset is:</p>
<h1 style="color: #4CAF50; font-size: 32px; letter-spacing: 5px;">{{.}}</h1>
<p>This OTP will expire in 10 minutes.</p>
<p>If you didn't request this, please ignore this email.</p>`))
)

// Sender is anything that can deliver a composed message. *gomail.Dialer
// satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	sender Sender
	from   string
}

func New(cfg config.Mail) *Mailer {
	return NewWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.Sender)
}

func NewWithSender(s Sender, from string) *Mailer {
	return &Mailer{sender: s, from: from}
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data string) error {
	if to == "" || to == m.from {
		return ErrInvalidRecipient
	}

	// gomail can't be cancelled once dialing started
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s mail, %w", tmpl.Name(), err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send %s mail, %w", tmpl.Name(), err)
	}

	zap.L().Debug("Mail sent", zap.String("kind", tmpl.Name()))
	return nil
}

// SendVerification mails the email verification link
func (m *Mailer) SendVerification(ctx context.Context, to, link string) error {
	return m.send(ctx, to, "Email Verification", verificationTmpl, link)
}

// SendOTP mails the password reset code
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	return m.send(ctx, to, "Password Reset OTP", otpTmpl, code)
}
