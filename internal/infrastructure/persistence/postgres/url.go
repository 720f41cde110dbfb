package postgres

import (
	"net/url"
	"strings"

	"github.com/coderva/tutoring-reports/internal/domain/shared"
)

// DefaultSSLMode is used when neither the URL nor the configuration names one.
const DefaultSSLMode = "require"

const jdbcPrefix = "jdbc:"

// NormalizeURL turns a configured database location into a pgx connection
// string. It accepts postgres://, postgresql:// and jdbc:postgresql:// forms.
// Non-empty user and password replace any credentials carried by the URL
// (userinfo or query parameters), and sslmode falls back to sslMode, then
// DefaultSSLMode.
func NormalizeURL(raw, user, password, sslMode string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", shared.NewDomainError(domain, "NormalizeURL", shared.ErrInvalidInput, "database URL is empty")
	}
	raw = strings.TrimPrefix(raw, jdbcPrefix)

	u, err := url.Parse(raw)
	if err != nil {
		return "", shared.WrapError(domain, "NormalizeURL", shared.ErrInvalidInput, "malformed database URL", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", shared.NewDomainError(domain, "NormalizeURL", shared.ErrInvalidInput,
			"unsupported database URL scheme "+strings.TrimSpace(u.Scheme))
	}

	q := u.Query()
	if user != "" || password != "" {
		name := user
		if name == "" {
			name = firstNonEmpty(q.Get("user"), u.User.Username())
		}
		q.Del("user")
		q.Del("password")
		if password != "" {
			u.User = url.UserPassword(name, password)
		} else if pw, ok := u.User.Password(); ok {
			u.User = url.UserPassword(name, pw)
		} else {
			u.User = url.User(name)
		}
	}

	if q.Get("sslmode") == "" {
		q.Set("sslmode", firstNonEmpty(sslMode, DefaultSSLMode))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Redact hides the password of a connection string for logging.
func Redact(raw string) string {
	u, err := url.Parse(strings.TrimPrefix(strings.TrimSpace(raw), jdbcPrefix))
	if err != nil {
		return "<unparseable>"
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", "xxxxx")
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
