package util

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var (
	secretNames     = []string{"api_key", "apikey", "secret", "token", "password", "access_key", "private_key"}
	keyValuePattern = regexp.MustCompile(`(?i)(api_key|apikey|secret|token|password|access_key|private_key)("?\s*[:=]\s*"?)([^\s"',}]+)`)
	privateKeyBlock = regexp.MustCompile(`(?is)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`)
	jwtPattern      = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.?[a-zA-Z0-9_-]*`)
	skPattern       = regexp.MustCompile(`(?i)sk-[a-z0-9]{20,}`)
)

// RedactSecrets removes likely secrets from text. Both key=value and JSON
// "key":"value" forms are covered.
func RedactSecrets(input string) string {
	out := keyValuePattern.ReplaceAllString(input, "${1}${2}"+redacted)
	out = privateKeyBlock.ReplaceAllString(out, "[REDACTED PRIVATE KEY]")
	out = jwtPattern.ReplaceAllString(out, "[REDACTED JWT]")
	out = skPattern.ReplaceAllString(out, "[REDACTED KEY]")
	return out
}

// RedactFields returns a copy of fields with the value of every secret-named
// key replaced, descending into nested objects and arrays. Remaining string
// values go through RedactSecrets.
func RedactFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if IsSecretName(key) {
			out[key] = redacted
			continue
		}
		out[key] = redactValue(value)
	}
	return out
}

// IsSecretName reports whether a field name looks like it holds a credential.
func IsSecretName(name string) bool {
	lower := strings.ToLower(name)
	for _, secret := range secretNames {
		if strings.Contains(lower, secret) {
			return true
		}
	}
	return false
}

func redactValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return RedactFields(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = redactValue(item)
		}
		return items
	case string:
		return RedactSecrets(v)
	default:
		return value
	}
}
