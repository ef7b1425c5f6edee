package mail

import (
	"context"
	"testing"

	"github.com/go-mail-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTransport struct{ mock.Mock }

func (m *mockTransport) SendCustom(ctx context.Context, e *domain.CustomEmail) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockTransport) SendTemplate(ctx context.Context, e *domain.TemplateEmail) error {
	return m.Called(ctx, e).Error(0)
}

type mockSecrets struct{ mock.Mock }

func (m *mockSecrets) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(tr *mockTransport, sec *mockSecrets, welcome string) Service {
	return NewService(ServiceDeps{
		Transport:            tr,
		Secrets:              sec,
		SenderSecret:         "MAILGUN_SENDER",
		VerificationTemplate: "verification-code",
		WelcomeTemplate:      welcome,
	})
}

// --- SendCustomEmail ---

func TestSendCustomEmail_MissingBody_RejectedBeforeTransport(t *testing.T) {
	tr := &mockTransport{}
	svc := newService(tr, &mockSecrets{}, "")

	err := svc.SendCustomEmail(context.Background(), domain.CustomEmail{
		Recipients: []string{"a@x.com"},
		Subject:    "Hi",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	tr.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything)
}

func TestSendCustomEmail_MissingSubject(t *testing.T) {
	tr := &mockTransport{}
	svc := newService(tr, &mockSecrets{}, "")

	err := svc.SendCustomEmail(context.Background(), domain.CustomEmail{
		Recipients: []string{"a@x.com"},
		Text:       "hello",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	tr.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything)
}

func TestSendCustomEmail_NoRecipients(t *testing.T) {
	svc := newService(&mockTransport{}, &mockSecrets{}, "")
	err := svc.SendCustomEmail(context.Background(), domain.CustomEmail{Subject: "Hi", Text: "hello"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSendCustomEmail_FallsBackToSenderSecret(t *testing.T) {
	tr := &mockTransport{}
	sec := &mockSecrets{}
	sec.On("Get", mock.Anything, "MAILGUN_SENDER").Return("noreply@example.com", nil)
	tr.On("SendCustom", mock.Anything, mock.MatchedBy(func(e *domain.CustomEmail) bool {
		return e.From == "noreply@example.com" && e.HTML == "<p>hi</p>"
	})).Return(nil)

	svc := newService(tr, sec, "")
	err := svc.SendCustomEmail(context.Background(), domain.CustomEmail{
		Recipients: []string{"a@x.com"},
		Subject:    "Hi",
		HTML:       "<p>hi</p>",
	})

	require.NoError(t, err)
	tr.AssertExpectations(t)
	sec.AssertExpectations(t)
}

func TestSendCustomEmail_ExplicitFromSkipsSecret(t *testing.T) {
	tr := &mockTransport{}
	sec := &mockSecrets{}
	tr.On("SendCustom", mock.Anything, mock.Anything).Return(nil)

	svc := newService(tr, sec, "")
	err := svc.SendCustomEmail(context.Background(), domain.CustomEmail{
		Recipients: []string{"a@x.com"},
		Subject:    "Hi",
		Text:       "hi",
		From:       "team@example.com",
	})

	require.NoError(t, err)
	sec.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSendCustomEmail_DeliveryErrorPropagates(t *testing.T) {
	tr := &mockTransport{}
	tr.On("SendCustom", mock.Anything, mock.Anything).Return(domain.ErrMailDelivery)

	svc := newService(tr, &mockSecrets{}, "")
	err := svc.SendCustomEmail(context.Background(), domain.CustomEmail{
		Recipients: []string{"a@x.com"}, Subject: "Hi", Text: "hi", From: "team@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrMailDelivery)
}

// --- SendTemplateEmail ---

func TestSendTemplateEmail_MissingTemplate(t *testing.T) {
	tr := &mockTransport{}
	svc := newService(tr, &mockSecrets{}, "")
	err := svc.SendTemplateEmail(context.Background(), domain.TemplateEmail{Recipients: []string{"a@x.com"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
	tr.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything)
}

func TestSendVerificationEmails_UsesVerificationTemplate(t *testing.T) {
	tr := &mockTransport{}
	sec := &mockSecrets{}
	sec.On("Get", mock.Anything, "MAILGUN_SENDER").Return("noreply@example.com", nil)
	vars := domain.RecipientVariables{"a@x.com": {"code": "123456"}}
	tr.On("SendTemplate", mock.Anything, mock.MatchedBy(func(e *domain.TemplateEmail) bool {
		return e.Template == "verification-code" &&
			len(e.Recipients) == 1 && e.Recipients[0] == "a@x.com" &&
			e.RecipientVariables["a@x.com"]["code"] == "123456"
	})).Return(nil)

	svc := newService(tr, sec, "")
	require.NoError(t, svc.SendVerificationEmails(context.Background(), []string{"a@x.com"}, vars))
	tr.AssertExpectations(t)
}

func TestSendWelcomeEmails_DisabledWithoutTemplate(t *testing.T) {
	tr := &mockTransport{}
	svc := newService(tr, &mockSecrets{}, "")
	require.NoError(t, svc.SendWelcomeEmails(context.Background(), []string{"a@x.com"}))
	tr.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything)
}

func TestSendWelcomeEmails_Enabled(t *testing.T) {
	tr := &mockTransport{}
	sec := &mockSecrets{}
	sec.On("Get", mock.Anything, "MAILGUN_SENDER").Return("noreply@example.com", nil)
	tr.On("SendTemplate", mock.Anything, mock.MatchedBy(func(e *domain.TemplateEmail) bool {
		return e.Template == "welcome-email"
	})).Return(nil)

	svc := newService(tr, sec, "welcome-email")
	require.NoError(t, svc.SendWelcomeEmails(context.Background(), []string{"a@x.com"}))
	tr.AssertExpectations(t)
}
