package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"notary-relay/internal/domain"
)

// RecordingStore persists flushed recordings in badger. The assembled
// media goes under a label-scoped key, the session metadata under a
// sibling meta key. Tolerates both collaborator call shapes: with and
// without room/token.
type RecordingStore struct {
	db *badger.DB
}

type recordingMeta struct {
	MediaLabel string        `json:"media_label"`
	RoomID     domain.RoomID `json:"room,omitempty"`
	AuthToken  string        `json:"auth_token,omitempty"`
	Chunks     int           `json:"chunks"`
	Bytes      int64         `json:"bytes"`
	SavedAt    time.Time     `json:"saved_at"`
}

func Open(dir string) (*RecordingStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open recording store: %w", err)
	}
	return &RecordingStore{db: db}, nil
}

// OpenInMemory backs the store with badger's in-memory mode. Used in
// tests and for ephemeral deployments.
func OpenInMemory() (*RecordingStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open recording store: %w", err)
	}
	return &RecordingStore{db: db}, nil
}

func (s *RecordingStore) Close() error { return s.db.Close() }

func (s *RecordingStore) Save(ctx context.Context, rec domain.Recording) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp := time.Now().UnixNano()
	dataKey := fmt.Sprintf("recording:%s:%d", rec.MediaLabel, stamp)
	metaKey := fmt.Sprintf("recording-meta:%s:%d", rec.MediaLabel, stamp)

	meta := recordingMeta{
		MediaLabel: rec.MediaLabel,
		RoomID:     rec.RoomID,
		AuthToken:  rec.AuthToken,
		Chunks:     len(rec.Chunks),
		Bytes:      lo.SumBy(rec.Chunks, func(c []byte) int64 { return int64(len(c)) }),
		SavedAt:    time.Now(),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	blob := bytes.Join(rec.Chunks, nil)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataKey), blob); err != nil {
			return err
		}
		return txn.Set([]byte(metaKey), metaBytes)
	})
	if err != nil {
		return fmt.Errorf("save recording %q: %w", rec.MediaLabel, err)
	}
	log.Info().Str("module", "storage").Str("label", rec.MediaLabel).Int("chunks", meta.Chunks).Int64("bytes", meta.Bytes).Msg("recording saved")
	return nil
}

// Load returns the newest stored blob for a label.
func (s *RecordingStore) Load(label string) ([]byte, error) {
	var out []byte
	prefix := []byte(fmt.Sprintf("recording:%s:", label))
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, badger.ErrKeyNotFound
	}
	return out, nil
}
