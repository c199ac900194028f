package config

import "strings"

// MaskToken redacts a webhook token for logging. The first 6 characters
// of each /-delimited segment are kept, the remainder replaced with an
// ellipsis, so operators can still tell tokens apart.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	parts := strings.Split(token, "/")
	for i, p := range parts {
		if len(p) > 6 {
			parts[i] = p[:6] + "…"
		}
	}
	return strings.Join(parts, "/")
}
