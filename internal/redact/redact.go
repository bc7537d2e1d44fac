// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. It targets the secrets
// this service actually handles: database connection strings, bearer tokens,
// signing secrets, passwords and user email addresses.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

// NotSet is returned by DatabaseURL for an empty connection string.
const NotSet = "NOT SET"

// MaskedPassword replaces passwords in DatabaseURL output. It needs no
// escaping in a URL, so the result stays readable.
const MaskedPassword = "xxxxx"

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Applied in order: connection strings and JWTs go first so the generic
// key=value rules below never see their fragments.
var rules = []rule{
	{
		re:          regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis)://[^\s@/]+@`),
		replacement: "${1}://" + RedactedCredentialPlaceholder + "@",
	},
	{
		re:          regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: RedactedJWTPlaceholder,
	},
	{
		re:          regexp.MustCompile(`(?i)(password|passwd|pwd)(\s*[=:]\s*)("[^"]*"|'[^']*'|[^\s&,;]+)`),
		replacement: "${1}${2}" + RedactionPlaceholder,
	},
	{
		re:          regexp.MustCompile(`(?i)(secret|api[_-]?key|token)(\s*[=:]\s*)("[^"]*"|'[^']*'|[^\s&,;\[]+)`),
		replacement: "${1}${2}" + RedactionPlaceholder,
	},
	{
		re:          regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: RedactedEmailPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// DatabaseURL returns a connection string that is safe to log: the password
// is masked while user, host, port and database name stay visible.
func DatabaseURL(raw string) string {
	if raw == "" {
		return NotSet
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return String(raw)
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), MaskedPassword)
	}

	// Query parameters may carry a password too (e.g. ?password=...)
	q := u.Query()
	for _, key := range []string{"password", "sslpassword"} {
		if q.Has(key) {
			q.Set(key, MaskedPassword)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}
