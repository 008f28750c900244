package gemini

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kitbuilder587/gemini-go/internal/redact"
)

const (
	MaxPromptLength = 8192

	recommendedKeyLength = 40
)

var credentialFormat = regexp.MustCompile(`^AIza[a-zA-Z0-9_-]{35,}$`)

var validRoles = map[string]bool{
	"user":      true,
	"model":     true,
	"assistant": true,
}

// ValidateCredential проверяет формат ключа. Короткий, но валидный ключ - только warning.
func ValidateCredential(cred string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cred) == "" {
		logger.Error("credential is missing")
		return newError(ErrAuthentication, "credential required")
	}

	if !credentialFormat.MatchString(cred) {
		logger.Error("invalid credential format", zap.String("credential", redact.MaskCredential(cred)))
		return newError(ErrAuthentication, "invalid credential format")
	}

	if len(cred) < recommendedKeyLength {
		logger.Warn("potentially weak credential", zap.Int("length", len(cred)))
	}
	return nil
}

func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return newError(ErrInvalidRequest, "prompt cannot be empty")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return newError(ErrInvalidRequest, "prompt too long")
	}
	return nil
}

func validateMessages(messages []ChatMessage) error {
	if len(messages) == 0 {
		return newError(ErrInvalidRequest, "messages cannot be empty")
	}
	for _, m := range messages {
		if !validRoles[m.Role] {
			return newError(ErrInvalidRequest, "invalid message role")
		}
	}
	return nil
}

func validateImage(image []byte) error {
	if len(image) == 0 {
		return newError(ErrInvalidRequest, "image is required")
	}
	return nil
}

// MaskCredential - см. redact.MaskCredential
func MaskCredential(key string) string {
	return redact.MaskCredential(key)
}
