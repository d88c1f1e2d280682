package history

import (
	"fmt"
	"io"

	"social_caption_generator/config"
	"social_caption_generator/logger"
)

// Open builds the store selected by cfg. The returned closer releases any
// resources the backend holds.
func Open(cfg config.HistoryConfig, log logger.Logger) (Store, io.Closer, error) {
	switch cfg.Backend {
	case "", "json":
		return NewFileStore(cfg.Path, cfg.Limit, log), nopCloser{}, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path, cfg.Limit)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("history backend %s not supported", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
