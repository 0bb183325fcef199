package stores

import (
	"context"
	"errors"
	"fmt"
	"mindmap-share/core"
	"mindmap-share/token"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// maxTokenAttempts bounds regeneration after a backend reports a token
// collision.
const maxTokenAttempts = 3

type documentStore struct {
	records core.RecordStore
	tokens  token.Generator
	log     logrus.FieldLogger

	mu    sync.Mutex
	ready atomic.Bool
}

func NewDocumentStore(records core.RecordStore, tokens token.Generator, log logrus.FieldLogger) core.DocumentStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &documentStore{records: records, tokens: tokens, log: log}
}

// Init prepares the backend. Concurrent callers are serialized and only
// the first successful call reaches the backend; a failed Init may be retried.
func (s *documentStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return nil
	}
	if err := s.records.Init(ctx); err != nil {
		s.log.WithField("error", err).Error("Failed to initialize storage")
		return core.StorageFailure("init", err)
	}
	s.ready.Store(true)
	s.log.Info("Storage initialized")
	return nil
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := s.log.WithField("document_id", id)

	if !token.WellFormed(id) {
		log.Debug("Rejected malformed document ID")
		return nil, core.ErrNotFound
	}
	if !s.ready.Load() {
		return nil, core.StorageFailure("find", core.ErrNotInitialized)
	}

	log.Debug("Retrieving document by ID")
	data, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("Document with specified ID not found")
			return nil, core.ErrNotFound
		}
		log.WithField("error", err).Error("Failed to retrieve document")
		return nil, core.StorageFailure("find", err)
	}

	payload, err := core.Parse(data)
	if err != nil {
		log.WithField("error", err).Error("Stored document is not valid JSON")
		return nil, core.StorageFailure("decode", err)
	}

	log.Info("Document retrieved successfully")
	return &core.Document{Token: id, Payload: payload}, nil
}

func (s *documentStore) Create(ctx context.Context, payload core.Value) (string, error) {
	if core.IsEmpty(payload) {
		return "", core.ErrInvalidInput
	}
	if !s.ready.Load() {
		return "", core.StorageFailure("create", core.ErrNotInitialized)
	}

	data, err := core.Marshal(payload)
	if err != nil {
		s.log.WithField("error", err).Error("Failed to serialize document")
		return "", core.StorageFailure("encode", err)
	}

	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		id, err := s.tokens.New()
		if err != nil {
			return "", core.StorageFailure("token", err)
		}
		log := s.log.WithFields(logrus.Fields{
			"document_id": id,
			"data_length": len(data),
		})

		err = s.records.Insert(ctx, id, data)
		if err == nil {
			log.Info("Document created successfully")
			return id, nil
		}
		if errors.Is(err, core.ErrTokenConflict) {
			log.WithField("attempt", attempt).Warn("Generated token already in use, retrying")
			continue
		}
		log.WithField("error", err).Error("Failed to create document")
		return "", core.StorageFailure("create", err)
	}

	return "", core.StorageFailure("create", fmt.Errorf("%w after %d attempts", core.ErrTokenConflict, maxTokenAttempts))
}

func (s *documentStore) Close() error {
	return s.records.Close()
}
