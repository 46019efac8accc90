// Package persistence provides the durable-storage slot the memory
// store snapshots into: one logical byte slot with file-backed and
// SQLite-backed implementations.
package persistence

import (
	"context"
	"errors"
)

// ErrEmptySlot is returned by Read when no snapshot has been written.
var ErrEmptySlot = errors.New("memory slot is empty")

// Storage is a single logical memory-file slot.
type Storage interface {
	// Write replaces the slot contents atomically.
	Write(ctx context.Context, data []byte) error

	// Read returns the slot contents, or ErrEmptySlot.
	Read(ctx context.Context) ([]byte, error)

	// Close releases underlying resources.
	Close() error
}
