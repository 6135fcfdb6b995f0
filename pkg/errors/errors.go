package errors

import (
	"errors"
	"fmt"
)

var (
	// Сессия и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrSessionNotFound      = fmt.Errorf("сессия не найдена или истекла")
	ErrRefreshUnavailable   = fmt.Errorf("refresh-токен отсутствует")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrUnauthorized      = fmt.Errorf("неавторизован")
	ErrForbidden         = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserNotFoundInContext = fmt.Errorf("пользователь не найден в контексте запроса")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")

	// Оборудование
	ErrDisposalReasonTooShort = fmt.Errorf("причина списания должна содержать не менее 10 символов")
	ErrNothingSelected        = fmt.Errorf("не выбрано ни одного оборудования")
	ErrSameBranchTransfer     = fmt.Errorf("филиал назначения совпадает с текущим")
	ErrEscalationReason       = fmt.Errorf("причина эскалации должна содержать не менее 10 символов")
)

// HttpError - ошибка, которую контроллер отдаёт клиенту как есть.
// Err и Context уходят только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: ctx}
}

// InvalidInputError - ошибка пользовательского ввода, обнаруженная до запроса в backend.
type InvalidInputError struct {
	Message string
	Cause   error
}

func (e *InvalidInputError) Error() string { return e.Message }

func (e *InvalidInputError) Unwrap() error { return e.Cause }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// WrapInvalidInput помечает известную ошибку как ошибку ввода, сохраняя её для errors.Is.
func WrapInvalidInput(cause error) error {
	return &InvalidInputError{Message: cause.Error(), Cause: cause}
}

func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
