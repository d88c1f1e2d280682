// Package history keeps the most recent generation results, newest first.
package history

import (
	"context"
	"fmt"

	"social_caption_generator/generator"
)

const DefaultLimit = 20

// Store is a capped, newest-first log of records. Records are only ever
// prepended; anything past the limit is dropped.
type Store interface {
	Load(ctx context.Context) ([]generator.Record, error)
	Save(ctx context.Context, entry generator.Record) error
}

// CorruptHistoryError means the backing data exists but cannot be decoded.
type CorruptHistoryError struct {
	Path string
	Err  error
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("history %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptHistoryError) Unwrap() error {
	return e.Err
}

// prepend returns entry followed by records, cut to limit.
func prepend(records []generator.Record, entry generator.Record, limit int) []generator.Record {
	out := make([]generator.Record, 0, min(len(records)+1, limit))
	out = append(out, entry)
	for _, r := range records {
		if len(out) >= limit {
			break
		}
		out = append(out, r)
	}
	return out
}
