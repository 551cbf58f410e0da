package domain

// Recording is one flushed chunk sequence handed to the persistence
// collaborator. RoomID and AuthToken are set on the recording-end path
// and empty on the disconnect path; the store must tolerate both
// shapes.
type Recording struct {
	Chunks     [][]byte
	MediaLabel string
	RoomID     RoomID
	AuthToken  string
}

// Size is the total payload length across all chunks.
func (r Recording) Size() int64 {
	var n int64
	for _, c := range r.Chunks {
		n += int64(len(c))
	}
	return n
}
