package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// StoreError reports a failed read against the order store.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}

func IsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// WriteError reports a failed create or update. For creates, nothing of the
// order was persisted.
type WriteError struct {
	Op      string
	OrderID string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("write %s (order %s): %v", e.Op, e.OrderID, e.Cause)
	}
	return fmt.Sprintf("write %s: %v", e.Op, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

func NewWriteError(op, orderID string, cause error) *WriteError {
	return &WriteError{Op: op, OrderID: orderID, Cause: cause}
}

func IsWriteError(err error) (*WriteError, bool) {
	var we *WriteError
	if stderrors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// DecodeError reports a stored aggregate that could not be rebuilt into a
// well-typed Order.
type DecodeError struct {
	OrderID string
	Reason  string
	Cause   error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decoding order %s: %s", e.OrderID, e.Reason)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func NewDecodeError(orderID, reason string, cause error) *DecodeError {
	return &DecodeError{OrderID: orderID, Reason: reason, Cause: cause}
}

func IsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// DeadlockError reports a write that kept deadlocking. Cause is the error of
// the last attempt.
type DeadlockError struct {
	Message string
	Cause   error
}

func (e *DeadlockError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DeadlockError) Unwrap() error {
	return e.Cause
}

func NewDeadlockError(message string, cause error) *DeadlockError {
	return &DeadlockError{Message: message, Cause: cause}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}
