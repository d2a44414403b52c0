package models

import (
	"errors"
	"fmt"
)

var ErrBatchTooLarge = errors.New("batch too large")

var ErrEmptyText = errors.New("text is empty")

type BatchTooLargeError struct {
	Size int
	Max  int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d texts exceeds maximum of %d", e.Size, e.Max)
}

func (e *BatchTooLargeError) Unwrap() error {
	return ErrBatchTooLarge
}

func NewBatchTooLargeError(size, max int) error {
	return &BatchTooLargeError{Size: size, Max: max}
}
