package core

import (
	"context"
)

type (
	Document struct {
		Token   string
		Payload Value
	}

	// DocumentStore issues share tokens for mind-maps and resolves them back.
	DocumentStore interface {
		Init(ctx context.Context) error
		FindID(ctx context.Context, token string) (*Document, error)
		Create(ctx context.Context, payload Value) (string, error)
		Close() error
	}

	// RecordStore is the durable backend behind a DocumentStore. Insert must
	// never overwrite: an existing token yields ErrTokenConflict.
	RecordStore interface {
		Init(ctx context.Context) error
		Insert(ctx context.Context, token string, data []byte) error
		Get(ctx context.Context, token string) ([]byte, error)
		Close() error
	}
)
