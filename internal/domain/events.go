package domain

// ServerMessage is the payload broadcast to live subscribers of a
// session. Exactly one of the optional fields is set depending on Type.
type ServerMessage struct {
	Content   string        `json:"content,omitempty"`
	SessionID string        `json:"sessionId"`
	Status    SessionStatus `json:"status,omitempty"`
	Stream    OutputStream  `json:"stream,omitempty"`
	Type      string        `json:"type"` // "status" or "output"
}

// NewStatusMessage builds a status broadcast payload
func NewStatusMessage(sessionID string, status SessionStatus) ServerMessage {
	return ServerMessage{Type: "status", SessionID: sessionID, Status: status}
}

// NewOutputMessage builds an output-line broadcast payload
func NewOutputMessage(sessionID string, stream OutputStream, content string) ServerMessage {
	return ServerMessage{Type: "output", SessionID: sessionID, Stream: stream, Content: content}
}

// CloneProgress is a point-in-time counter snapshot from an in-flight
// clone transfer. Later snapshots supersede earlier ones; values are
// never accumulated.
type CloneProgress struct {
	IndexedDeltas   int   `json:"indexedDeltas"`
	IndexedObjects  int   `json:"indexedObjects"`
	ReceivedBytes   int64 `json:"receivedBytes"`
	ReceivedObjects int   `json:"receivedObjects"`
	TotalDeltas     int   `json:"totalDeltas"`
	TotalObjects    int   `json:"totalObjects"`
}

// Clone event types. Every clone event stream ends with exactly one
// complete or error event.
const (
	CloneEventProgress = "progress"
	CloneEventComplete = "complete"
	CloneEventError    = "error"
)

// CloneEvent is one event in a clone progress stream
type CloneEvent struct {
	HelpSteps  []string       `json:"helpSteps,omitempty"`
	Message    string         `json:"message,omitempty"`
	Progress   *CloneProgress `json:"progress,omitempty"`
	Repository *Repository    `json:"repository,omitempty"`
	Type       string         `json:"type"`
}
