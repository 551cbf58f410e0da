package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayScopes_Vocabulary(t *testing.T) {
	req := require.New(t)

	excludeSelf := []EventName{
		EventNotaryAvailable, EventNotarySendTools, EventNotaryEditTools,
		EventNotaryDeleteTools, EventDocOwnerInvite, EventRemove,
		EventNotaryCompleteSession, EventNotaryCancelSession,
		EventNotaryNewRequest, EventShowCompleteNotice,
	}
	includeSelf := []EventName{
		EventRecordingStartSound, EventRecordingStopSound,
		EventShowRecordingNotice, EventShowFeedback,
		EventCloseAllVideoField, EventShowSessionAlert,
	}
	global := []EventName{
		EventUpdateDocumentDisplayed, EventRequestSent, EventCloseField,
	}

	for _, name := range excludeSelf {
		req.Equal(ScopeRoomExcludeSelf, RelayScopes[name], string(name))
	}
	for _, name := range includeSelf {
		req.Equal(ScopeRoomIncludeSelf, RelayScopes[name], string(name))
	}
	for _, name := range global {
		req.Equal(ScopeGlobalIncludeSelf, RelayScopes[name], string(name))
	}

	req.Len(RelayScopes, len(excludeSelf)+len(includeSelf)+len(global))
}

func TestRelayScopes_HandledEventsAreNotRelayed(t *testing.T) {
	req := require.New(t)
	for _, name := range []EventName{EventRecordingChunk, EventRecordingEnd, EventGeneratePDF, EventJoinRoomMessage} {
		_, ok := RelayScopes[name]
		req.False(ok, string(name))
	}
}

func TestDisconnectReason_String(t *testing.T) {
	req := require.New(t)
	req.Equal("client close", ReasonClientClose.String())
	req.Equal("network error", ReasonNetworkError.String())
	req.Equal("server forced", ReasonServerForced.String())
}
