package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-mail-verify/internal/domain"
	"github.com/go-mail-verify/internal/metrics"
	"github.com/go-mail-verify/internal/pkg/id"
	"github.com/go-mail-verify/internal/pkg/otp"
	"golang.org/x/sync/errgroup"
)

// DefaultCodeTTL is how long an issued code stays redeemable.
const DefaultCodeTTL = 10 * time.Minute

// purgeGrace keeps expired records readable long enough to report "expired"
// rather than "not found" before the store's TTL sweeps them.
const purgeGrace = 24 * time.Hour

// CodeStore persists one pending code per recipient.
type CodeStore interface {
	Put(ctx context.Context, v *domain.VerificationRecord) error
	Get(ctx context.Context, recipient string) (*domain.VerificationRecord, error)
	Consume(ctx context.Context, recipient, code string) error
}

// AccountStore looks up and creates accounts by email.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
}

// Mailer sends the verification and welcome batches.
type Mailer interface {
	SendVerificationEmails(ctx context.Context, recipients []string, vars domain.RecipientVariables) error
	SendWelcomeEmails(ctx context.Context, recipients []string) error
}

// TokenSigner issues an access token for a freshly created account.
type TokenSigner interface {
	Sign(userID, email, role string) (string, error)
}

// EventPublisher announces account lifecycle events.
type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, a *domain.Account) error
}

// IssueResult lists which recipients were sent a code and which already had an account.
type IssueResult struct {
	EmailsSent     []string
	ExistingEmails []string
}

// RedeemResult identifies the account created by a successful redemption.
type RedeemResult struct {
	UserID string
	Token  string
}

type Service interface {
	IssueCodes(ctx context.Context, recipients []string) (*IssueResult, error)
	RedeemCode(ctx context.Context, recipient, code string) (*RedeemResult, error)
}

// ServiceDeps wires a Service. Signer and Events are optional.
type ServiceDeps struct {
	Codes    CodeStore
	Accounts AccountStore
	Mailer   Mailer
	Signer   TokenSigner
	Events   EventPublisher
	CodeTTL  time.Duration
	Now      func() time.Time
	NewCode  func() (string, error)
}

type service struct {
	codes    CodeStore
	accounts AccountStore
	mailer   Mailer
	signer   TokenSigner
	events   EventPublisher
	codeTTL  time.Duration
	now      func() time.Time
	newCode  func() (string, error)
}

func NewService(d ServiceDeps) Service {
	s := &service{
		codes:    d.Codes,
		accounts: d.Accounts,
		mailer:   d.Mailer,
		signer:   d.Signer,
		events:   d.Events,
		codeTTL:  d.CodeTTL,
		now:      d.Now,
		newCode:  d.NewCode,
	}
	if s.codeTTL <= 0 {
		s.codeTTL = DefaultCodeTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = otp.New
	}
	return s
}

// IssueCodes writes a fresh code for every recipient without an account and
// mails them in one batch. A reissue silently replaces the previous code.
func (s *service) IssueCodes(ctx context.Context, recipients []string) (*IssueResult, error) {
	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("a list of recipients is required: %w", domain.ErrValidation)
	}

	existing := make([]bool, len(recipients))
	var mu sync.Mutex
	vars := make(domain.RecipientVariables, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	for i, rcpt := range recipients {
		i, rcpt := i, rcpt
		g.Go(func() error {
			exists, err := s.accountExists(gctx, rcpt)
			if err != nil {
				return err
			}
			if exists {
				existing[i] = true
				return nil
			}
			code, err := s.newCode()
			if err != nil {
				return err
			}
			now := s.now()
			expiresAt := now.Add(s.codeTTL)
			rec := &domain.VerificationRecord{
				Recipient: rcpt,
				Code:      code,
				ExpiresAt: expiresAt.UnixMilli(),
				PurgeAt:   expiresAt.Add(purgeGrace).Unix(),
			}
			if err := s.codes.Put(gctx, rec); err != nil {
				return fmt.Errorf("store code for %s: %w", rcpt, err)
			}
			mu.Lock()
			vars[rcpt] = map[string]any{"code": code}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &IssueResult{EmailsSent: []string{}, ExistingEmails: []string{}}
	for i, rcpt := range recipients {
		if existing[i] {
			res.ExistingEmails = append(res.ExistingEmails, rcpt)
		} else {
			res.EmailsSent = append(res.EmailsSent, rcpt)
		}
	}
	metrics.AddCodesIssued(len(res.EmailsSent))

	if len(res.EmailsSent) > 0 {
		if err := s.mailer.SendVerificationEmails(ctx, res.EmailsSent, vars); err != nil {
			return nil, fmt.Errorf("send verification emails: %w", err)
		}
	}
	return res, nil
}

// RedeemCode checks code against the stored record and, on a match within the
// validity window, consumes the record and creates a verified account.
func (s *service) RedeemCode(ctx context.Context, recipient, code string) (*RedeemResult, error) {
	if recipient == "" || code == "" {
		return nil, fmt.Errorf("both recipient and code are required: %w", domain.ErrValidation)
	}

	exists, err := s.accountExists(ctx, recipient)
	if err != nil {
		metrics.IncRedemption("error")
		return nil, err
	}
	if exists {
		metrics.IncRedemption("exists")
		return nil, fmt.Errorf("account already exists: %w", domain.ErrValidation)
	}

	rec, err := s.codes.Get(ctx, recipient)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncRedemption("not_found")
			return nil, fmt.Errorf("verification code not found: %w", domain.ErrNotFound)
		}
		metrics.IncRedemption("error")
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		metrics.IncRedemption("mismatch")
		return nil, fmt.Errorf("incorrect verification code: %w", domain.ErrValidation)
	}
	if rec.Expired(s.now()) {
		metrics.IncRedemption("expired")
		return nil, fmt.Errorf("verification code has expired: %w", domain.ErrValidation)
	}

	acct := &domain.Account{
		UserID:        id.New(),
		Email:         recipient,
		EmailVerified: true,
		Role:          domain.RoleUser,
		CreatedAt:     s.now().UTC(),
	}
	// Sign ahead of any write so a signing failure leaves the code redeemable.
	res := &RedeemResult{UserID: acct.UserID}
	if s.signer != nil {
		tok, err := s.signer.Sign(acct.UserID, acct.Email, acct.Role)
		if err != nil {
			metrics.IncRedemption("error")
			return nil, fmt.Errorf("sign access token: %w", err)
		}
		res.Token = tok
	}

	// Consume before creating the account: of two concurrent redemptions only
	// one passes the compare-and-delete.
	if err := s.codes.Consume(ctx, recipient, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncRedemption("not_found")
			return nil, fmt.Errorf("verification code not found: %w", domain.ErrNotFound)
		}
		metrics.IncRedemption("error")
		return nil, err
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		metrics.IncRedemption("error")
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("account already exists: %w", domain.ErrValidation)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	metrics.IncRedemption("redeemed")

	s.afterCreate(ctx, acct)
	return res, nil
}

// afterCreate runs best-effort side effects; failures are logged, never returned.
func (s *service) afterCreate(ctx context.Context, acct *domain.Account) {
	if s.events != nil {
		if err := s.events.PublishAccountCreated(ctx, acct); err != nil {
			slog.Warn("failed to publish account event", "user_id", acct.UserID, "err", err)
		}
	}
	if err := s.mailer.SendWelcomeEmails(ctx, []string{acct.Email}); err != nil {
		slog.Warn("failed to send welcome email", "user_id", acct.UserID, "err", err)
	}
}

func (s *service) accountExists(ctx context.Context, email string) (bool, error) {
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("look up account %s: %w", email, err)
	}
}

// dedupe drops empty and repeated addresses, keeping first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
