package gemini

import "errors"

// Виды ошибок. Проверяются через errors.Is, сама ошибка всегда *Error.
var (
	ErrAuthentication = errors.New("authentication error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrNetwork        = errors.New("network error")
	ErrAPI            = errors.New("api error")
)

// Error - единый тип ошибки клиента. errors.As(err, &*Error) ловит всё,
// errors.Is(err, ErrRateLimit) и т.п. - конкретный вид.
type Error struct {
	Kind       error
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg + ": " + err.Error(), Err: err}
}
