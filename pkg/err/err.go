package errprocess

import (
	"errors"

	"media_delivery_service/pkg/logger"
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap logs errMsg and returns an error carrying errMsg as its text while
// still matching kind through errors.Is
func Wrap(kind error, errMsg string) error {
	logger.Log.Error(errMsg)
	return &kindError{kind: kind, msg: errMsg}
}

// Warn same as Wrap, logged at warn level. Used for client caused failures.
func Warn(kind error, errMsg string) error {
	logger.Log.Warn(errMsg)
	return &kindError{kind: kind, msg: errMsg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
