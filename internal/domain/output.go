package domain

import "time"

// OutputStream tags which process stream a line came from
type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// OutputLog is one line of process output, append-only.
// ID increases monotonically per insertion so per-stream order
// is recoverable from storage.
type OutputLog struct {
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	ID        int64        `json:"id"`
	SessionID string       `json:"sessionId"`
	Stream    OutputStream `json:"stream"`
}
