package domain

import "encoding/json"

// EventName is a member of the fixed signaling vocabulary exchanged
// between session participants.
type EventName string

const (
	EventJoinRoomMessage EventName = "JOIN_ROOM_MESSAGE"

	EventNotaryAvailable       EventName = "NOTARY_AVAILABLE"
	EventNotarySendTools       EventName = "NOTARY_SEND_TOOLS"
	EventNotaryEditTools       EventName = "NOTARY_EDIT_TOOLS"
	EventNotaryDeleteTools     EventName = "NOTARY_DELETE_TOOLS"
	EventDocOwnerInvite        EventName = "DOC_OWNER_INVITE_PARTICIPANTS"
	EventRemove                EventName = "REMOVE"
	EventNotaryCompleteSession EventName = "NOTARY_COMPLETE_SESSION"
	EventNotaryCancelSession   EventName = "NOTARY_CANCEL_SESSION"
	EventNotaryNewRequest      EventName = "NOTARY_NEW_REQUEST"
	EventShowCompleteNotice    EventName = "SHOW_COMPLETE_SESSION_NOTICE"

	EventUpdateDocumentDisplayed EventName = "UPDATE_DOCUMENT_DISPLAYED"
	EventRequestSent             EventName = "request_sent"
	EventCloseField              EventName = "close_field"

	EventRecordingStartSound EventName = "RECORDING_START_SOUND"
	EventRecordingStopSound  EventName = "RECORDING_STOP_SOUND"
	EventShowRecordingNotice EventName = "SHOW_RECORDING_NOTICE"
	EventShowFeedback        EventName = "SHOW_FEED_BACK"
	EventCloseAllVideoField  EventName = "CLOSE_ALL_VIDEO_FIELD"
	EventShowSessionAlert    EventName = "SHOW_SESSION_TIME_ALERT"

	EventRecordingChunk EventName = "RECORDING_CHUNK_EVENT"
	EventRecordingEnd   EventName = "RECORDING_END_EVENT"
	EventGeneratePDF    EventName = "generate_pdf_send_mail"
)

// Scope determines which connections receive a relayed event.
type Scope int

const (
	// ScopeRoomExcludeSelf delivers to every other connection in the
	// sender's room. Used for one participant's private action toward
	// collaborators; the actor already has local state.
	ScopeRoomExcludeSelf Scope = iota
	// ScopeRoomIncludeSelf delivers to the whole room, sender included,
	// so the room re-renders from one authoritative broadcast.
	ScopeRoomIncludeSelf
	// ScopeGlobalIncludeSelf delivers to every connection on the server
	// regardless of room. Inherited room-isolation leak; kept because
	// participants outside the room have no other channel for these.
	ScopeGlobalIncludeSelf
)

// RelayScopes maps every forwardable event to its broadcast scope.
// Events absent from this table (recording, export) are handled, not
// relayed.
var RelayScopes = map[EventName]Scope{
	EventNotaryAvailable:       ScopeRoomExcludeSelf,
	EventNotarySendTools:       ScopeRoomExcludeSelf,
	EventNotaryEditTools:       ScopeRoomExcludeSelf,
	EventNotaryDeleteTools:     ScopeRoomExcludeSelf,
	EventDocOwnerInvite:        ScopeRoomExcludeSelf,
	EventRemove:                ScopeRoomExcludeSelf,
	EventNotaryCompleteSession: ScopeRoomExcludeSelf,
	EventNotaryCancelSession:   ScopeRoomExcludeSelf,
	EventNotaryNewRequest:      ScopeRoomExcludeSelf,
	EventShowCompleteNotice:    ScopeRoomExcludeSelf,

	EventUpdateDocumentDisplayed: ScopeGlobalIncludeSelf,
	EventRequestSent:             ScopeGlobalIncludeSelf,
	EventCloseField:              ScopeGlobalIncludeSelf,

	EventRecordingStartSound: ScopeRoomIncludeSelf,
	EventRecordingStopSound:  ScopeRoomIncludeSelf,
	EventShowRecordingNotice: ScopeRoomIncludeSelf,
	EventShowFeedback:        ScopeRoomIncludeSelf,
	EventCloseAllVideoField:  ScopeRoomIncludeSelf,
	EventShowSessionAlert:    ScopeRoomIncludeSelf,
}

// Envelope is the wire frame: an event name plus an opaque payload that
// the relay passes through unmodified.
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DisconnectReason classifies why a connection went away.
type DisconnectReason int

const (
	// ReasonClientClose - the peer sent a normal close frame.
	ReasonClientClose DisconnectReason = iota
	// ReasonNetworkError - the read loop failed without a close frame.
	ReasonNetworkError
	// ReasonServerForced - this server closed the connection on purpose.
	// The only reason that triggers an automatic reconnect attempt.
	ReasonServerForced
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonClientClose:
		return "client close"
	case ReasonNetworkError:
		return "network error"
	case ReasonServerForced:
		return "server forced"
	}
	return "unknown"
}
