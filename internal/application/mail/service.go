package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/go-mail-verify/internal/domain"
	"github.com/go-mail-verify/internal/metrics"
	"github.com/go-mail-verify/internal/pkg/validate"
)

// Transport delivers fully-formed messages to a mail provider.
type Transport interface {
	SendCustom(ctx context.Context, m *domain.CustomEmail) error
	SendTemplate(ctx context.Context, m *domain.TemplateEmail) error
}

// SecretGetter resolves the default sender address.
type SecretGetter interface {
	Get(ctx context.Context, name string) (string, error)
}

// Service validates outgoing mail and hands it to the transport.
type Service interface {
	SendCustomEmail(ctx context.Context, m domain.CustomEmail) error
	SendTemplateEmail(ctx context.Context, m domain.TemplateEmail) error
	SendVerificationEmails(ctx context.Context, recipients []string, vars domain.RecipientVariables) error
	SendWelcomeEmails(ctx context.Context, recipients []string) error
}

// ServiceDeps wires a Service.
type ServiceDeps struct {
	Transport            Transport
	Secrets              SecretGetter
	SenderSecret         string
	VerificationTemplate string
	WelcomeTemplate      string // empty disables welcome emails
}

type service struct {
	transport            Transport
	secrets              SecretGetter
	senderSecret         string
	verificationTemplate string
	welcomeTemplate      string
}

func NewService(d ServiceDeps) Service {
	return &service{
		transport:            d.Transport,
		secrets:              d.Secrets,
		senderSecret:         d.SenderSecret,
		verificationTemplate: d.VerificationTemplate,
		welcomeTemplate:      d.WelcomeTemplate,
	}
}

func (s *service) SendCustomEmail(ctx context.Context, m domain.CustomEmail) error {
	if err := validate.Struct(&m); err != nil {
		return err
	}
	from, err := s.sender(ctx, m.From)
	if err != nil {
		return err
	}
	m.From = from

	start := time.Now()
	err = s.transport.SendCustom(ctx, &m)
	metrics.ObserveMailSend("custom", start, err)
	return err
}

func (s *service) SendTemplateEmail(ctx context.Context, m domain.TemplateEmail) error {
	if err := validate.Struct(&m); err != nil {
		return err
	}
	from, err := s.sender(ctx, m.From)
	if err != nil {
		return err
	}
	m.From = from

	start := time.Now()
	err = s.transport.SendTemplate(ctx, &m)
	metrics.ObserveMailSend("template", start, err)
	return err
}

// SendVerificationEmails sends one batch with a per-recipient {code} variable.
func (s *service) SendVerificationEmails(ctx context.Context, recipients []string, vars domain.RecipientVariables) error {
	return s.SendTemplateEmail(ctx, domain.TemplateEmail{
		Recipients:         recipients,
		Template:           s.verificationTemplate,
		RecipientVariables: vars,
	})
}

func (s *service) SendWelcomeEmails(ctx context.Context, recipients []string) error {
	if s.welcomeTemplate == "" {
		return nil
	}
	return s.SendTemplateEmail(ctx, domain.TemplateEmail{
		Recipients: recipients,
		Template:   s.welcomeTemplate,
	})
}

func (s *service) sender(ctx context.Context, from string) (string, error) {
	if from != "" {
		return from, nil
	}
	v, err := s.secrets.Get(ctx, s.senderSecret)
	if err != nil {
		return "", fmt.Errorf("resolve default sender: %w", err)
	}
	return v, nil
}
