// Package smtp is a self-hosted mail transport. It mirrors the Mailgun batch
// semantics (%recipient.x% substitution, one message per recipient when
// recipient variables are present) and renders templates locally.
package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-mail-verify/internal/config"
	"github.com/go-mail-verify/internal/domain"
	mail "github.com/go-mail/mail"
)

// Mailer sends messages over SMTP.
type Mailer struct {
	dialer    *mail.Dialer
	templates *Templates
}

func NewMailer(cfg *config.Config, templates *Templates) *Mailer {
	return &Mailer{
		dialer:    mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		templates: templates,
	}
}

func (m *Mailer) SendCustom(ctx context.Context, e *domain.CustomEmail) error {
	return m.send(ctx, buildCustom(e))
}

func (m *Mailer) SendTemplate(ctx context.Context, e *domain.TemplateEmail) error {
	msgs, err := m.buildTemplate(e)
	if err != nil {
		slog.Error("error rendering email template", "template", e.Template, "err", err)
		return fmt.Errorf("send via smtp: %w", domain.ErrMailDelivery)
	}
	return m.send(ctx, msgs)
}

func (m *Mailer) send(ctx context.Context, msgs []*mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msgs...); err != nil {
		slog.Error("error sending email via smtp", "messages", len(msgs), "err", err)
		return fmt.Errorf("send via smtp: %w", domain.ErrMailDelivery)
	}
	return nil
}

func buildCustom(e *domain.CustomEmail) []*mail.Message {
	if len(e.RecipientVariables) == 0 {
		return []*mail.Message{newMessage(e.From, e.ReplyTo, e.Recipients, e.Subject, e.HTML, e.Text)}
	}
	msgs := make([]*mail.Message, 0, len(e.Recipients))
	for _, rcpt := range e.Recipients {
		r := recipientReplacer(e.RecipientVariables[rcpt])
		msgs = append(msgs, newMessage(e.From, e.ReplyTo, []string{rcpt},
			r.Replace(e.Subject), r.Replace(e.HTML), r.Replace(e.Text)))
	}
	return msgs
}

func (m *Mailer) buildTemplate(e *domain.TemplateEmail) ([]*mail.Message, error) {
	msgs := make([]*mail.Message, 0, len(e.Recipients))
	for _, rcpt := range e.Recipients {
		vars := make(map[string]any, len(e.Variables)+1)
		for k, v := range e.Variables {
			vars[k] = v
		}
		for k, v := range e.RecipientVariables[rcpt] {
			vars[k] = v
		}
		subject, html, err := m.templates.Render(e.Template, vars)
		if err != nil {
			return nil, err
		}
		if e.Subject != "" {
			subject = e.Subject
		}
		msgs = append(msgs, newMessage(e.From, e.ReplyTo, []string{rcpt}, subject, html, ""))
	}
	return msgs, nil
}

func newMessage(from, replyTo string, to []string, subject, html, text string) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	if replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	switch {
	case text != "" && html != "":
		msg.SetBody("text/plain", text)
		msg.AddAlternative("text/html", html)
	case html != "":
		msg.SetBody("text/html", html)
	default:
		msg.SetBody("text/plain", text)
	}
	return msg
}

// recipientReplacer expands Mailgun-style %recipient.key% placeholders.
func recipientReplacer(vars map[string]any) *strings.Replacer {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "%recipient."+k+"%", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...)
}
