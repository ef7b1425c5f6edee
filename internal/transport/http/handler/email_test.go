package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-mail-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMailSvc struct{ mock.Mock }

func (m *mockMailSvc) SendCustomEmail(ctx context.Context, e domain.CustomEmail) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockMailSvc) SendTemplateEmail(ctx context.Context, e domain.TemplateEmail) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockMailSvc) SendVerificationEmails(ctx context.Context, recipients []string, vars domain.RecipientVariables) error {
	return m.Called(ctx, recipients, vars).Error(0)
}
func (m *mockMailSvc) SendWelcomeEmails(ctx context.Context, recipients []string) error {
	return m.Called(ctx, recipients).Error(0)
}

func TestSendCustom_Success(t *testing.T) {
	svc := &mockMailSvc{}
	svc.On("SendCustomEmail", mock.Anything, mock.MatchedBy(func(e domain.CustomEmail) bool {
		return e.Subject == "Hi" && e.Text == "hello" && e.ReplyTo == "r@x.com"
	})).Return(nil)
	h := NewEmailHandler(svc)
	rr := httptest.NewRecorder()
	h.SendCustom(rr, postJSON(t, "/v1/emails/custom", map[string]any{
		"recipients": []string{"a@x.com"}, "subject": "Hi", "text": "hello", "replyTo": "r@x.com",
	}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestSendCustom_ValidationIs400(t *testing.T) {
	svc := &mockMailSvc{}
	svc.On("SendCustomEmail", mock.Anything, mock.Anything).
		Return(fmt.Errorf("field 'HTML' failed 'required_without': %w", domain.ErrValidation))
	h := NewEmailHandler(svc)
	rr := httptest.NewRecorder()
	h.SendCustom(rr, postJSON(t, "/v1/emails/custom", map[string]any{"recipients": []string{"a@x.com"}, "subject": "Hi"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendTemplate_DeliveryFailureIsGeneric500(t *testing.T) {
	svc := &mockMailSvc{}
	svc.On("SendTemplateEmail", mock.Anything, mock.MatchedBy(func(e domain.TemplateEmail) bool {
		return e.Template == "promo" && e.RecipientVariables["a@x.com"]["name"] == "Ann"
	})).Return(domain.ErrMailDelivery)
	h := NewEmailHandler(svc)
	rr := httptest.NewRecorder()
	h.SendTemplate(rr, postJSON(t, "/v1/emails/template", map[string]any{
		"recipients":         []string{"a@x.com"},
		"template":           "promo",
		"recipientVariables": map[string]any{"a@x.com": map[string]any{"name": "Ann"}},
	}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"failed to send template email"}`, rr.Body.String())
}

func TestMethodNotAllowed_Body(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowed(http.MethodPost)(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method Not Allowed. Use POST."}`, rr.Body.String())

	rr = httptest.NewRecorder()
	MethodNotAllowed(http.MethodGet)(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method Not Allowed. Use GET."}`, rr.Body.String())
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "bad thing", clientMessage(fmt.Errorf("bad thing: %w", domain.ErrValidation), domain.ErrValidation))
	assert.Equal(t, "invalid argument", clientMessage(domain.ErrValidation, domain.ErrValidation))
}
