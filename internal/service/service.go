package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"appraise-go/internal/apperror"

	"go.uber.org/zap"
)

// dbError logs a storage-layer failure with its operation name before the
// error propagates to the caller. Domain errors (apperror) bypass this.
func dbError(log *zap.Logger, operation string, err error) error {
	log.Error("database operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", operation, err)
}

func normalizeRequiredString(raw string, field string) (string, error) {
	value := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(value)
	if length < 2 || length > 200 {
		return "", apperror.New(apperror.CodeValidation, fmt.Sprintf("%s length must be in range 2..200", field))
	}
	return value, nil
}
