package domain

// DirectMessage is one sealed message between two users.
// It has no identity of its own and lives inside User.ChatLogs.
type DirectMessage struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`

	// Payload is the authenticated-encrypted body, base64 text.
	Payload string `json:"payload"`

	// Timestamp is the send time (Unix milliseconds).
	Timestamp int64 `json:"timestamp"`
}
