// Package notify turns session lifecycle events into outbound notification
// payloads, decoupled from the command request/response path.
package notify

// Field is one labeled value in a payload.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Payload is a transport-agnostic structured message. The Discord adapter
// renders it as an embed.
type Payload struct {
	Title       string
	Description string
	Fields      []Field
	Thumbnail   string
}
