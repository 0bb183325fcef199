package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrInvalidInput   = errors.New("no data provided")
	ErrStorageFailure = errors.New("storage failure")
	ErrTokenConflict  = errors.New("token already exists")
	ErrNotInitialized = errors.New("store not initialized")
)

// StorageFailure marks err as a storage failure while keeping it inspectable
// with errors.Is / errors.As.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
