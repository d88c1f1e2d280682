package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"social_caption_generator/generator"
	"social_caption_generator/logger"
)

// FileStore keeps history as one JSON array in a single file, rewritten in
// full on every Save. Saves within one process are serialized; separate
// processes sharing the file can still lose each other's entries.
type FileStore struct {
	path  string
	limit int
	log   logger.Logger
	mu    sync.Mutex
}

func NewFileStore(path string, limit int, log logger.Logger) *FileStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = logger.Log
	}
	return &FileStore{path: path, limit: limit, log: log}
}

func (s *FileStore) Path() string { return s.path }

// Load returns the stored records as written. A missing or empty file is an
// empty history; undecodable content is a *CorruptHistoryError.
func (s *FileStore) Load(_ context.Context) ([]generator.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []generator.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []generator.Record{}, nil
	}
	var records []generator.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptHistoryError{Path: s.path, Err: err}
	}
	if records == nil {
		records = []generator.Record{}
	}
	return records, nil
}

// Save prepends entry, truncates to the limit and atomically replaces the file.
// A corrupt file is replaced by a history holding only entry.
func (s *FileStore) Save(ctx context.Context, entry generator.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load(ctx)
	var corrupt *CorruptHistoryError
	if errors.As(err, &corrupt) {
		s.log.Warnf("[history] %v; starting a new history", err)
		records, err = nil, nil
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(prepend(records, entry, s.limit), "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
