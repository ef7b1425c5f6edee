// Package mailgun sends messages through the Mailgun HTTP API.
package mailgun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-mail-verify/internal/domain"
)

// SecretGetter resolves provider credentials by secret name.
type SecretGetter interface {
	Get(ctx context.Context, name string) (string, error)
}

// Options configures a Client. APIKeySecret and DomainSecret are secret names,
// not values; they are resolved on every send through the (caching) getter.
type Options struct {
	BaseURL      string
	APIKeySecret string
	DomainSecret string
	HTTPClient   *http.Client
}

// Client posts form-encoded messages to <BaseURL>/v3/<domain>/messages.
type Client struct {
	baseURL      string
	apiKeySecret string
	domainSecret string
	secrets      SecretGetter
	http         *http.Client
}

func NewClient(secrets SecretGetter, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKeySecret: opts.APIKeySecret,
		domainSecret: opts.DomainSecret,
		secrets:      secrets,
		http:         hc,
	}
}

// SendCustom delivers an inline HTML/text message.
func (c *Client) SendCustom(ctx context.Context, m *domain.CustomEmail) error {
	form := baseForm(m.From, m.Recipients, m.Subject, m.ReplyTo)
	if m.HTML != "" {
		form.Set("html", m.HTML)
	}
	if m.Text != "" {
		form.Set("text", m.Text)
	}
	if err := setJSON(form, "h:X-Mailgun-Variables", m.Variables); err != nil {
		return err
	}
	if err := setRecipientVariables(form, m.RecipientVariables); err != nil {
		return err
	}
	return c.post(ctx, form)
}

// SendTemplate delivers a message rendered from a Mailgun-hosted template.
func (c *Client) SendTemplate(ctx context.Context, m *domain.TemplateEmail) error {
	form := baseForm(m.From, m.Recipients, m.Subject, m.ReplyTo)
	form.Set("template", m.Template)
	if err := setJSON(form, "t:variables", m.Variables); err != nil {
		return err
	}
	if err := setRecipientVariables(form, m.RecipientVariables); err != nil {
		return err
	}
	return c.post(ctx, form)
}

func baseForm(from string, recipients []string, subject, replyTo string) url.Values {
	form := url.Values{}
	form.Set("from", from)
	form.Set("to", strings.Join(recipients, ","))
	if subject != "" {
		form.Set("subject", subject)
	}
	if replyTo != "" {
		form.Set("h:Reply-To", replyTo)
	}
	return form
}

// setJSON encodes v into a single form field; empty maps are omitted.
func setJSON[M ~map[K]V, K comparable, V any](form url.Values, field string, v M) error {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, domain.ErrValidation)
	}
	form.Set(field, string(b))
	return nil
}

// setRecipientVariables always sends the field, as {} when empty. Its presence
// keeps Mailgun in batch mode so each recipient sees only their own address.
func setRecipientVariables(form url.Values, v domain.RecipientVariables) error {
	if v == nil {
		v = domain.RecipientVariables{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode recipient-variables: %w", domain.ErrValidation)
	}
	form.Set("recipient-variables", string(b))
	return nil
}

func (c *Client) post(ctx context.Context, form url.Values) error {
	apiKey, err := c.secrets.Get(ctx, c.apiKeySecret)
	if err != nil {
		return err
	}
	mailDomain, err := c.secrets.Get(ctx, c.domainSecret)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.baseURL, url.PathEscape(mailDomain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("error sending email via mailgun", "kind", "transport", "err", err)
		return fmt.Errorf("send via mailgun: %w", domain.ErrMailDelivery)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		slog.Error("error sending email via mailgun",
			"kind", "response", "status", resp.StatusCode, "body", string(detail))
		return fmt.Errorf("send via mailgun: %w", domain.ErrMailDelivery)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
