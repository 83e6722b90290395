package storage

import (
	"context"
	"io"
)

// ProofStorage persists transfer-proof images attached to deposits,
// withdrawals and installment payments.
type ProofStorage interface {
	// Save stores the file and returns the storage key plus the public URL
	// members see on their transaction detail.
	Save(ctx context.Context, originalName string, reader io.Reader) (key string, url string, err error)

	// Open returns the stored file for streaming back to the client.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether the key is present and its size in bytes.
	Exists(ctx context.Context, key string) (bool, int64, error)

	Delete(ctx context.Context, key string) error
}
