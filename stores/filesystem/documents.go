package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mindmap-share/core"
	"mindmap-share/token"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type recordStore struct {
	basePath string // Directory where documents are stored.
	log      logrus.FieldLogger
}

func NewRecordStore(basePath string, log logrus.FieldLogger) core.RecordStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &recordStore{basePath: basePath, log: log}
}

func (s *recordStore) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create base directory: %w", err)
	}
	return nil
}

func (s *recordStore) path(id string) (string, error) {
	if !token.WellFormed(id) {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return filepath.Join(s.basePath, id), nil
}

func (s *recordStore) Get(ctx context.Context, id string) ([]byte, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, core.ErrNotFound
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Insert writes the document to a temporary file first and then hard-links
// it under its final name, so readers never see a partial file and an
// existing document is never replaced.
func (s *recordStore) Insert(ctx context.Context, id string, data []byte) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	log := s.log.WithFields(logrus.Fields{
		"document_id": id,
		"file_path":   filePath,
	})

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

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
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Link(tmpPath, filePath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return core.ErrTokenConflict
		}
		return err
	}
	if err := os.Chmod(filePath, 0644); err != nil {
		log.WithField("error", err).Warn("Failed to set document permissions")
	}
	log.Debug("Document file written")
	return nil
}

func (s *recordStore) Close() error {
	return nil
}
