package redact

import (
	"regexp"
	"strings"
)

const Token = "[REDACTED]"

var credentialPattern = regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35,}`)

// MaskCredential оставляет первые и последние 4 символа, середину заменяет на '*'.
// Ключи длиной <= 8 возвращаются как есть, пустой ключ - Token.
func MaskCredential(key string) string {
	if key == "" {
		return Token
	}
	if len(key) <= 8 {
		return key
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Credentials вырезает из произвольного текста всё, что похоже на API ключ
func Credentials(s string) string {
	if !strings.Contains(s, "AIza") {
		return s
	}
	return credentialPattern.ReplaceAllString(s, Token)
}
