package token

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	FormatUUID = "uuid"
	FormatULID = "ulid"
)

// Generator issues share tokens. Implementations must be safe for
// concurrent use and produce URL path segment safe text.
type Generator interface {
	New() (string, error)
}

type GeneratorFunc func() (string, error)

func (f GeneratorFunc) New() (string, error) { return f() }

// UUID generates random (version 4) UUIDs, 122 random bits.
type UUID struct{}

func (UUID) New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// ULID generates lexicographically time-sortable ids: 48 bits of
// millisecond time followed by 80 random bits.
type ULID struct{}

func (ULID) New() (string, error) {
	// ulid.Make uses a process-wide monotonic source guarded by a mutex.
	return ulid.Make().String(), nil
}

func New(format string) (Generator, error) {
	switch format {
	case "", FormatUUID:
		return UUID{}, nil
	case FormatULID:
		return ULID{}, nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

var wellFormed = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// WellFormed reports whether s could have been issued by any Generator.
// Anything else can be answered as not found without touching storage.
func WellFormed(s string) bool {
	return wellFormed.MatchString(s)
}
