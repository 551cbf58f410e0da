package domain

// RoomID is the opaque session identifier participants join by.
type RoomID string

// Room exists implicitly while at least one connection references its ID.
type Room struct {
	ID RoomID
}
