package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces anything that looks like a credential.
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	// user:password@ in service URLs
	regexp.MustCompile(`(?i)(://)[^/\s:@]+:[^/\s@]+@`),
	regexp.MustCompile(`(?i)bearer\s+[a-z0-9._~+/=-]{16,}`),
	regexp.MustCompile(`(?i)basic\s+[a-z0-9+/=]{12,}`),
	regexp.MustCompile(`(?i)(password|secret|token|api_key|apikey)\s*[:=]\s*[^\s,;&]{6,}`),
}

var sensitiveKeyParts = []string{
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
	"AUTHORIZATION",
}

// RedactSensitiveData scrubs credentials from a free-form string. URL
// credentials keep the scheme separator so the result stays readable.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	out := sensitivePatterns[0].ReplaceAllString(value, "${1}"+RedactedPlaceholder+"@")
	for _, p := range sensitivePatterns[1:] {
		out = p.ReplaceAllString(out, RedactedPlaceholder)
	}
	return out
}

// IsSensitiveField reports whether a field or header name implies a secret value.
func IsSensitiveField(name string) bool {
	upper := strings.ToUpper(name)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(upper, part) {
			return true
		}
	}
	return false
}
