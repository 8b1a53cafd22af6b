package command

import "time"

// SelectOption is one entry of an interactive choice menu.
type SelectOption struct {
	Label       string
	Description string
	Value       string
}

// Selection is a one-shot choice menu attached to a reply. The transport
// renders it, keeps it alive for TTL, restricts it to UserID and calls Pick
// exactly once with the chosen value; after that, or once the TTL passes,
// the menu is disabled.
type Selection struct {
	// Name labels the originating command in dispatch logs.
	Name        string
	Placeholder string
	UserID      string
	TTL         time.Duration
	Options     []SelectOption
	Pick        func(ctx *Context, value string) error
}
