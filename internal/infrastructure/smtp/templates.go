package smtp

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type compiled struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
}

// Templates is a registry of locally rendered message templates.
type Templates struct {
	byName map[string]compiled
}

// NewTemplates returns a registry preloaded with the built-in verification
// and welcome templates under the given names.
func NewTemplates(verificationName, welcomeName string) (*Templates, error) {
	t := &Templates{byName: make(map[string]compiled)}
	if err := t.Add(verificationName, "Your verification code",
		`<p>Your verification code is <b>{{.code}}</b>.</p><p>It expires in 10 minutes.</p>`); err != nil {
		return nil, err
	}
	if welcomeName != "" {
		if err := t.Add(welcomeName, "Welcome!",
			`<p>Your account is ready. Thanks for verifying your email.</p>`); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add compiles and registers a template, replacing any with the same name.
func (t *Templates) Add(name, subject, html string) error {
	s, err := texttemplate.New(name).Option("missingkey=zero").Parse(subject)
	if err != nil {
		return fmt.Errorf("parse subject of %s: %w", name, err)
	}
	h, err := htmltemplate.New(name).Option("missingkey=zero").Parse(html)
	if err != nil {
		return fmt.Errorf("parse body of %s: %w", name, err)
	}
	t.byName[name] = compiled{subject: s, html: h}
	return nil
}

// Render executes the named template with vars.
func (t *Templates) Render(name string, vars map[string]any) (subject, html string, err error) {
	c, ok := t.byName[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}
	var sb, hb bytes.Buffer
	if err := c.subject.Execute(&sb, vars); err != nil {
		return "", "", fmt.Errorf("render subject of %s: %w", name, err)
	}
	if err := c.html.Execute(&hb, vars); err != nil {
		return "", "", fmt.Errorf("render body of %s: %w", name, err)
	}
	return sb.String(), hb.String(), nil
}
