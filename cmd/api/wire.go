package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-mail-verify/internal/application/mail"
	"github.com/go-mail-verify/internal/application/verification"
	"github.com/go-mail-verify/internal/config"
	"github.com/go-mail-verify/internal/infrastructure/awscfg"
	"github.com/go-mail-verify/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-mail-verify/internal/infrastructure/jwt"
	"github.com/go-mail-verify/internal/infrastructure/mailgun"
	redisstore "github.com/go-mail-verify/internal/infrastructure/redis"
	"github.com/go-mail-verify/internal/infrastructure/secrets"
	"github.com/go-mail-verify/internal/infrastructure/smtp"
	"github.com/go-mail-verify/internal/infrastructure/sns"
	"github.com/go-mail-verify/internal/metrics"
	transporthttp "github.com/go-mail-verify/internal/transport/http"
	"github.com/prometheus/client_golang/prometheus"
)

// app owns every long-lived dependency built at startup.
type app struct {
	deps    *transporthttp.Deps
	closers []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}
}

func build(ctx context.Context, cfg *config.Config, bootstrap bool) (*app, error) {
	a := &app{}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	if bootstrap {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	}

	accessor := secrets.NewAccessor(newFetcher(cfg, awsCfg), cfg.SecretsProject)

	transport, err := newTransport(cfg, accessor)
	if err != nil {
		return nil, err
	}
	mailSvc := mail.NewService(mail.ServiceDeps{
		Transport:            transport,
		Secrets:              accessor,
		SenderSecret:         cfg.MailSenderSecret,
		VerificationTemplate: cfg.VerificationTemplate,
		WelcomeTemplate:      cfg.WelcomeTemplate,
	})

	codes, closeCodes, err := newCodeStore(cfg, dynamoClient)
	if err != nil {
		return nil, err
	}
	if closeCodes != nil {
		a.closers = append(a.closers, closeCodes)
	}

	vdeps := verification.ServiceDeps{
		Codes:    codes,
		Accounts: dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		Mailer:   mailSvc,
		CodeTTL:  cfg.CodeTTL,
	}

	var verifier *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		verifier = p
		vdeps.Signer = p
	} else {
		if cfg.AllowUnauthenticatedEmail {
			slog.Warn("JWT provider not available; tokens disabled and email endpoints unguarded", "err", err)
		} else {
			slog.Warn("JWT provider not available; tokens disabled and email endpoints not mounted", "err", err)
		}
	}

	if cfg.SNSTopicARN != "" {
		vdeps.Events = sns.NewPublisher(awsCfg, cfg.AWSEndpointURL, cfg.SNSTopicARN)
	}

	limiter := transporthttp.DefaultLimiter()
	a.closers = append(a.closers, func() error { limiter.Close(); return nil })

	a.deps = &transporthttp.Deps{
		Verification: verification.NewService(vdeps),
		Mail:         mailSvc,
		Limiter:      limiter,
		Gatherer:     prometheus.DefaultGatherer,
	}
	if verifier != nil {
		a.deps.Verifier = verifier
	}
	return a, nil
}

func newFetcher(cfg *config.Config, awsCfg aws.Config) secrets.Fetcher {
	if cfg.SecretsBackend == "env" {
		return secrets.EnvFetcher{}
	}
	return secrets.NewAWSFetcher(awsCfg, cfg.AWSEndpointURL)
}

func newTransport(cfg *config.Config, accessor *secrets.Accessor) (mail.Transport, error) {
	switch cfg.MailProvider {
	case "mailgun":
		return mailgun.NewClient(accessor, mailgun.Options{
			BaseURL:      cfg.MailgunBaseURL,
			APIKeySecret: cfg.MailgunAPIKeySecret,
			DomainSecret: cfg.MailgunDomainSecret,
		}), nil
	case "smtp":
		tpl, err := smtp.NewTemplates(cfg.VerificationTemplate, cfg.WelcomeTemplate)
		if err != nil {
			return nil, fmt.Errorf("compile mail templates: %w", err)
		}
		return smtp.NewMailer(cfg, tpl), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}

func newCodeStore(cfg *config.Config, dynamoClient *dynamodb.Client) (verification.CodeStore, func() error, error) {
	switch cfg.CodeStore {
	case "dynamo":
		return dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.VerificationCodes), nil, nil
	case "redis":
		client := redisstore.NewClient(cfg.RedisAddr, cfg.RedisDB)
		return redisstore.NewVerificationRepo(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown CODE_STORE %q", cfg.CodeStore)
	}
}
