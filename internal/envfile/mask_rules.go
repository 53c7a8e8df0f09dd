package envfile

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

func defaultPlainRules() []PlainRule {
	return []PlainRule{
		&EmptyRule{},
		&URLRule{},
		&HostnameRule{},
		&BooleanRule{},
		&NumberRule{},
		&WellKnownKeyRule{},
	}
}

type EmptyRule struct{}

func (r *EmptyRule) IsPlain(key, value string) bool {
	return value == ""
}

// URLRule accepts URLs that carry no user info.
type URLRule struct{}

func (r *URLRule) IsPlain(key, value string) bool {
	if !strings.Contains(value, "://") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if u.User != nil {
		_, hasPassword := u.User.Password()
		if u.User.Username() != "" || hasPassword {
			return false
		}
	}
	return true
}

type HostnameRule struct{}

var localhostPattern = regexp.MustCompile(`(?i)^(localhost|127\.0\.0\.1|::1)$`)

func (r *HostnameRule) IsPlain(key, value string) bool {
	return localhostPattern.MatchString(value)
}

type BooleanRule struct{}

func (r *BooleanRule) IsPlain(key, value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "on", "off":
		return true
	}
	return false
}

type NumberRule struct{}

func (r *NumberRule) IsPlain(key, value string) bool {
	if _, err := strconv.Atoi(value); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// WellKnownKeyRule accepts the usual values of a few conventional keys.
type WellKnownKeyRule struct{}

var wellKnownValues = map[string][]string{
	"NODE_ENV":  {"development", "production", "test"},
	"APP_ENV":   {"development", "production", "test", "staging", "local"},
	"LOG_LEVEL": {"debug", "info", "warn", "error", "verbose"},
	"HOST":      {"localhost", "127.0.0.1", "::1", "0.0.0.0"},
}

func (r *WellKnownKeyRule) IsPlain(key, value string) bool {
	allowed, ok := wellKnownValues[strings.ToUpper(key)]
	if !ok {
		return false
	}
	return slices.Contains(allowed, strings.ToLower(strings.TrimSpace(value)))
}
