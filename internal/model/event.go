package model

// Event types delivered over the real-time transport.
const (
	EventMessage       = "message"
	EventUpdateMessage = "update_message"
	EventDeleteMessage = "delete_message"
)

// Event is a single frame from the real-time transport. Only the fields
// relevant to the named type are populated.
type Event struct {
	Type string `json:"type"`

	// EventMessage
	Message *Message `json:"message,omitempty"`

	// EventUpdateMessage / EventDeleteMessage
	MessageIDs []int64 `json:"message_ids,omitempty"`

	// EventUpdateMessage only. Content carries the re-rendered HTML;
	// ContentChanged distinguishes a substantive edit from a cosmetic
	// re-render (e.g. a changed link preview), which must not disturb
	// cached previews.
	Content        string `json:"content,omitempty"`
	ContentChanged bool   `json:"content_changed,omitempty"`
}
