package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

var testOwner = domain.Participant{
	Username:   "alice",
	Token:      "tok-1",
	RoomID:     "R1",
	MediaLabel: "closing.webm",
}

func TestRecorder_FlushPreservesArrivalOrder(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(0)
	sid := core.SessionID("s1")

	req.False(rec.Append(sid, testOwner, []byte("c1")))
	req.False(rec.Append(sid, testOwner, []byte("c2")))
	req.False(rec.Append(sid, testOwner, []byte("c3")))

	out, ok := rec.Flush(sid)
	req.True(ok)
	req.Equal([][]byte{[]byte("c1"), []byte("c2"), []byte("c3")}, out.Chunks)
	req.Equal("closing.webm", out.MediaLabel)
	req.Equal(domain.RoomID("R1"), out.RoomID)
	req.Equal("tok-1", out.AuthToken)
}

func TestRecorder_SecondFlushIsNoOp(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(0)
	sid := core.SessionID("s1")

	rec.Append(sid, testOwner, []byte("c1"))
	_, ok := rec.Flush(sid)
	req.True(ok)

	_, ok = rec.Flush(sid)
	req.False(ok)
	_, ok = rec.FlushDetached(sid)
	req.False(ok)
}

func TestRecorder_FlushBoundaryLosesNothing(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(0)
	sid := core.SessionID("s1")

	rec.Append(sid, testOwner, []byte("c1"))
	first, ok := rec.Flush(sid)
	req.True(ok)
	req.Len(first.Chunks, 1)

	// The key stays known; appends after a flush start a fresh sequence.
	rec.Append(sid, testOwner, []byte("c2"))
	second, ok := rec.Flush(sid)
	req.True(ok)
	req.Equal([][]byte{[]byte("c2")}, second.Chunks)
}

func TestRecorder_DetachedFlushCarriesOnlyLabel(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(0)
	sid := core.SessionID("s1")

	rec.Append(sid, testOwner, []byte("c1"))
	out, ok := rec.FlushDetached(sid)

	req.True(ok)
	req.Equal("closing.webm", out.MediaLabel)
	req.Empty(out.RoomID)
	req.Empty(out.AuthToken)
}

func TestRecorder_UnknownSessionFlushIsNoOp(t *testing.T) {
	rec := NewRecorder(0)
	_, ok := rec.Flush(core.SessionID("never-seen"))
	require.False(t, ok)
}

func TestRecorder_OverflowSignalsEarlyFlush(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(4)
	sid := core.SessionID("s1")

	req.False(rec.Append(sid, testOwner, []byte("abcd")))
	req.True(rec.Append(sid, testOwner, []byte("e")))
	req.Equal(int64(5), rec.PendingBytes(sid))

	_, ok := rec.Flush(sid)
	req.True(ok)
	req.Zero(rec.PendingBytes(sid))
}

func TestRecorder_BuffersAreIndependentPerSession(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(0)
	other := testOwner
	other.Username = "bob"
	other.MediaLabel = "witness.webm"

	rec.Append("s1", testOwner, []byte("a"))
	rec.Append("s2", other, []byte("b"))

	out, ok := rec.Flush("s2")
	req.True(ok)
	req.Equal("witness.webm", out.MediaLabel)
	req.Equal([][]byte{[]byte("b")}, out.Chunks)
	req.Equal(int64(1), rec.PendingBytes("s1"))
}

func TestRecorder_DropForgetsTheKey(t *testing.T) {
	req := require.New(t)
	rec := NewRecorder(0)
	sid := core.SessionID("s1")

	rec.Append(sid, testOwner, []byte("a"))
	rec.Drop(sid)

	_, ok := rec.Flush(sid)
	req.False(ok)
	req.Zero(rec.PendingBytes(sid))
}
