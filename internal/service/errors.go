package service

import "errors"

// Ошибки валидации и стейджинга. Проверки полей выполняются до любых
// сетевых вызовов; аутентификация проверяется после полей.
var (
	ErrMissingDescription     = errors.New("description is required")
	ErrMissingLocation        = errors.New("location is required")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrTooManyAttachments     = errors.New("too many attachments")
)
