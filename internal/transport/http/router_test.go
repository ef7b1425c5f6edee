package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-mail-verify/internal/application/verification"
	"github.com/go-mail-verify/internal/config"
	"github.com/go-mail-verify/internal/domain"
	"github.com/go-mail-verify/internal/infrastructure/jwt/jwttest"
	appmiddleware "github.com/go-mail-verify/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type stubVerification struct{}

func (stubVerification) IssueCodes(_ context.Context, r []string) (*verification.IssueResult, error) {
	return &verification.IssueResult{EmailsSent: r, ExistingEmails: []string{}}, nil
}
func (stubVerification) RedeemCode(context.Context, string, string) (*verification.RedeemResult, error) {
	return &verification.RedeemResult{UserID: "u1"}, nil
}

type stubMail struct{}

func (stubMail) SendCustomEmail(context.Context, domain.CustomEmail) error     { return nil }
func (stubMail) SendTemplateEmail(context.Context, domain.TemplateEmail) error { return nil }
func (stubMail) SendVerificationEmails(context.Context, []string, domain.RecipientVariables) error {
	return nil
}
func (stubMail) SendWelcomeEmails(context.Context, []string) error { return nil }

func newTestRouter(deps *Deps) http.Handler {
	return newTestRouterWithConfig(&config.Config{AllowedOrigins: []string{"*"}, AllowUnauthenticatedEmail: true}, deps)
}

func newTestRouterWithConfig(cfg *config.Config, deps *Deps) http.Handler {
	deps.Verification = stubVerification{}
	deps.Mail = stubMail{}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}
	return NewRouter(cfg, deps)
}

func TestRouter_WrongVerbIs405(t *testing.T) {
	r := newTestRouter(&Deps{})
	for _, path := range []string{"/v1/verification/send-code", "/v1/verification/verify-code", "/v1/emails/custom"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, path)
		assert.JSONEq(t, `{"error":"Method Not Allowed. Use POST."}`, rr.Body.String(), path)
	}
}

func TestRouter_SendCode(t *testing.T) {
	r := newTestRouter(&Deps{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/verification/send-code",
		bytes.NewBufferString(`{"recipients":["a@x.com"]}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"emailsSent":["a@x.com"],"existingEmails":[]}`, rr.Body.String())
}

func TestRouter_EmailRoutesRequireAdminWhenVerifierSet(t *testing.T) {
	p := jwttest.NewProvider(t)
	r := newTestRouter(&Deps{Verifier: p})
	body := `{"recipients":["a@x.com"],"subject":"Hi","text":"hello"}`

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/emails/custom", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	userTok, err := p.Sign("u1", "a@x.com", domain.RoleUser)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/emails/custom", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+userTok)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	adminTok, err := p.Sign("u2", "admin@x.com", domain.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/v1/emails/custom", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_HealthWrongVerbNamesGET(t *testing.T) {
	r := newTestRouter(&Deps{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/health-check/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method Not Allowed. Use GET."}`, rr.Body.String())
}

func TestRouter_EmailRoutesNotMountedWithoutVerifier(t *testing.T) {
	r := newTestRouterWithConfig(&config.Config{AllowedOrigins: []string{"*"}}, &Deps{})
	for _, path := range []string{"/v1/emails/custom", "/v1/emails/template"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path,
			bytes.NewBufferString(`{"recipients":["a@x.com"],"template":"promo"}`)))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/verification/send-code",
		bytes.NewBufferString(`{"recipients":["a@x.com"]}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_TrustProxyHeadersKeysLimiterOnForwardedClient(t *testing.T) {
	limiter := appmiddleware.NewRateLimiter(rate.Limit(0.001), 1)
	defer limiter.Close()
	r := newTestRouterWithConfig(&config.Config{AllowedOrigins: []string{"*"}, TrustProxyHeaders: true},
		&Deps{Limiter: limiter})

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/verification/send-code",
			bytes.NewBufferString(`{"recipients":["a@x.com"]}`))
		req.RemoteAddr = "172.16.0.1:443"
		req.Header.Set("X-Real-Ip", client)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1"))
	assert.Equal(t, http.StatusOK, send("2.2.2.2"))
}

func TestRouter_EmailRoutesOpenWhenExplicitlyAllowed(t *testing.T) {
	r := newTestRouter(&Deps{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/emails/template",
		bytes.NewBufferString(`{"recipients":["a@x.com"],"template":"promo"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(&Deps{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
