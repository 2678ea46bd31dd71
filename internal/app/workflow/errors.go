package workflow

import "fmt"

// ForbiddenError - недопустимый переход или неуполномоченный подписант.
// Обработчик отдаёт такие ошибки с кодом 403.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

func forbiddenf(format string, args ...interface{}) error {
	return &ForbiddenError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError - нарушение бизнес-правила в данных запроса.
// Обработчик отдаёт такие ошибки с кодом 422 и именем поля.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
