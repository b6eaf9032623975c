package util

import (
	"errors"
	"fmt"
)

var (
	ErrNotEnrolled      = errors.New("not enrolled in course")
	ErrAlreadyCompleted = errors.New("content already completed")
	ErrInvalidCourse    = errors.New("course not found or invalid")
)

// ValidationError 业务校验失败，Field 指出出错的输入
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError 判断错误链中是否包含 ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
