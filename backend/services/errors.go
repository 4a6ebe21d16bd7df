package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/models"
	"stepwise/backend/quiz"
)

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation_failed"
	KindLocked          Kind = "locked"
	KindNotStarted      Kind = "not_started"
	KindAlreadyFinished Kind = "already_finished"
	KindForbidden       Kind = "forbidden"
	KindUnauthorized    Kind = "unauthorized"
	KindInternal        Kind = "internal"
)

// Error is the only error type services hand to the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrLocked          = &Error{Kind: KindLocked}
	ErrNotStarted      = &Error{Kind: KindNotStarted}
	ErrAlreadyFinished = &Error{Kind: KindAlreadyFinished}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrInternal        = &Error{Kind: KindInternal}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, KindInternal for anything foreign.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// classify turns errors raised below the service layer into *Error values.
// Unknown faults are logged and reported as KindInternal.
func classify(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}
	case errors.Is(err, quiz.ErrUnknownQuestion):
		return &Error{Kind: KindNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, quiz.ErrNoAnswers):
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	case errors.Is(err, models.ErrCategoryFull), errors.Is(err, models.ErrOrderRequired):
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	logger.Error("service operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}
