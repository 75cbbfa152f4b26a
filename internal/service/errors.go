package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound — ресурс отсутствует или принадлежит другому владельцу.
	// Для share-токенов сюда же сворачивается истёкшая ссылка.
	ErrNotFound = errors.New("not found")

	// ErrValidation — сентинел для errors.Is на любой *ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError — некорректный ввод; Message уходит клиенту как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError — сбой хранилища. Детали логируются, наружу не отдаются.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// wrapErr приводит ошибку репозитория к таксономии сервиса.
// Уже классифицированные ошибки проходят без изменений.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation), errors.As(err, &se):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return &StorageError{Op: op, Err: err}
	}
}
