package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"notary-relay/internal/domain"
)

func openTestStore(t *testing.T) *RecordingStore {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordingStore_SaveAssemblesChunksInOrder(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	err := s.Save(context.Background(), domain.Recording{
		Chunks:     [][]byte{[]byte("c1"), []byte("c2"), []byte("c3")},
		MediaLabel: "closing.webm",
		RoomID:     "R1",
		AuthToken:  "tok",
	})
	req.NoError(err)

	blob, err := s.Load("closing.webm")
	req.NoError(err)
	req.Equal([]byte("c1c2c3"), blob)
}

func TestRecordingStore_ToleratesDetachedShape(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	// The disconnect path supplies only chunks and label.
	err := s.Save(context.Background(), domain.Recording{
		Chunks:     [][]byte{[]byte("tail")},
		MediaLabel: "witness.webm",
	})
	req.NoError(err)

	blob, err := s.Load("witness.webm")
	req.NoError(err)
	req.Equal([]byte("tail"), blob)
}

func TestRecordingStore_LoadUnknownLabel(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load("never-recorded")
	require.Error(t, err)
}

func TestRecordingStore_SaveHonorsCanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx, domain.Recording{
		Chunks:     [][]byte{[]byte("x")},
		MediaLabel: "late.webm",
	})
	require.ErrorIs(t, err, context.Canceled)
}
