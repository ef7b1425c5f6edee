package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	CodeStore string // "dynamo" | "redis"
	RedisAddr string
	RedisDB   int
	CodeTTL   time.Duration

	SecretsBackend string // "aws" | "env"
	SecretsProject string

	MailProvider         string // "mailgun" | "smtp"
	MailgunBaseURL       string
	MailgunAPIKeySecret  string
	MailgunDomainSecret  string
	MailSenderSecret     string
	VerificationTemplate string
	WelcomeTemplate      string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SNSTopicARN    string
	AllowedOrigins []string // CORS allowed origins

	// TrustProxyHeaders rewrites the client address from X-Forwarded-For /
	// X-Real-Ip. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	// AllowUnauthenticatedEmail serves the email endpoints without a token
	// verifier. Without it they are not mounted when JWT keys are missing.
	AllowUnauthenticatedEmail bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts          string
	VerificationCodes string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:          getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			VerificationCodes: getEnv("DYNAMO_TABLE_VERIFICATION_CODES", "verification_codes"),
		},

		CodeStore: getEnv("CODE_STORE", "dynamo"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		CodeTTL:   getEnvDuration("CODE_TTL", 10*time.Minute),

		SecretsBackend: getEnv("SECRETS_BACKEND", "aws"),
		SecretsProject: getEnv("SECRETS_PROJECT", ""),

		MailProvider:         getEnv("MAIL_PROVIDER", "mailgun"),
		MailgunBaseURL:       getEnv("MAILGUN_BASE_URL", "https://api.mailgun.net"),
		MailgunAPIKeySecret:  getEnv("MAILGUN_API_KEY_SECRET", "MAILGUN_API_KEY"),
		MailgunDomainSecret:  getEnv("MAILGUN_DOMAIN_SECRET", "MAILGUN_DOMAIN"),
		MailSenderSecret:     getEnv("MAIL_SENDER_SECRET", "MAILGUN_SENDER"),
		VerificationTemplate: getEnv("MAIL_TEMPLATE_VERIFICATION", "verification-code"),
		WelcomeTemplate:      getEnv("MAIL_TEMPLATE_WELCOME", ""),
		SMTPHost:             getEnv("SMTP_HOST", "localhost"),
		SMTPPort:             getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		TrustProxyHeaders:         getEnvBool("TRUST_PROXY_HEADERS", false),
		AllowUnauthenticatedEmail: getEnvBool("ALLOW_UNAUTHENTICATED_EMAIL", false),
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
