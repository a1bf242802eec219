package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactClaims returns a log-safe copy of raw principal claims. Values
// under credential-bearing keys are masked, nested maps and slices are
// walked.
func RedactClaims(claims map[string]any) map[string]any {
	if len(claims) == 0 {
		return map[string]any{}
	}
	return redactClaimsMap(claims)
}

func redactClaimsMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactClaimsValue(value)
	}
	return target
}

func redactClaimsValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactClaimsMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactClaimsValue(typed[i])
		}
		return out
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isTraceabilityKey(key) {
		return false
	}
	sensitiveTokens := []string{
		"password",
		"secret",
		"token",
		"authorization",
		"api_key",
		"apikey",
		"access_key",
		"refresh",
		"credential",
		"signature",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isTraceabilityKey(key string) bool {
	switch key {
	case "sub",
		"uid",
		"owner_id",
		"transaction_id",
		"token_use",
		"trace_id",
		"request_id":
		return true
	default:
		return false
	}
}
