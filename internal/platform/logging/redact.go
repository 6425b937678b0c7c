package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Regex patterns for sensitive values that may leak into free-form fields.
var (
	// Discord bot token: three base64url segments separated by dots.
	botTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}\.[A-Za-z0-9_-]{6,}\.[A-Za-z0-9_-]{20,}$`)

	// Connection URL carrying credentials.
	credentialURLPattern = regexp.MustCompile(`^[a-z+]+://[^:/@]+:[^@]+@`)

	// Bearer token pattern
	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)
)

// DefaultRedactOptions returns the default masq options for secret redaction.
// This covers the bot token and the database URL plus the usual suspects;
// extend with additional options where a caller logs richer structures.
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		// Common sensitive field names
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("Token"),
		masq.WithFieldName("URL"),
		masq.WithFieldName("url"),
		masq.WithFieldName("dsn"),
		masq.WithFieldName("database_url"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("credential"),
		masq.WithFieldName("credentials"),

		// Field name prefixes for sensitive data
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),

		// Regex patterns for sensitive values
		masq.WithRegex(botTokenPattern),
		masq.WithRegex(credentialURLPattern),
		masq.WithRegex(bearerPattern),
	}
}

// NewReplaceAttr creates a ReplaceAttr function for slog.HandlerOptions
// that redacts sensitive data. Uses DefaultRedactOptions which can be
// extended for project-specific needs.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	allOpts := append(DefaultRedactOptions(), opts...)
	return masq.New(allOpts...)
}
