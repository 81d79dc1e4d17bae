// Package storage provides the bounded key/value medium the attendance
// store persists into. Every adapter enforces a hard byte ceiling on the
// total stored payload and reports overflow with a typed quota error, so
// the store's recovery protocol can distinguish "out of space" from a
// genuinely failed write.
package storage

import (
	"errors"
	"fmt"
)

// Medium is a flat key/value store with a fixed capacity ceiling.
//
// Get returns the stored value and whether the key exists. Set replaces the
// value under key, returning a QuotaExceededError when the write would push
// the medium past its byte limit. Remove is a no-op for absent keys.
type Medium interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// QuotaExceededError is returned by Set when a write does not fit within
// the medium's byte ceiling. The write has no effect.
type QuotaExceededError struct {
	Key       string
	Attempted int // bytes the rejected value would occupy
	Used      int // bytes currently stored under other keys
	Limit     int // total capacity in bytes
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("storage quota exceeded writing %q: %d bytes attempted, %d/%d bytes used",
		e.Key, e.Attempted, e.Used, e.Limit)
}

// IsQuotaExceeded reports whether err is (or wraps) a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}
