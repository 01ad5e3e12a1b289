package dispatch

// Event is one inbound chat message, already classified by the transport.
type Event struct {
	SenderID  int64
	Username  string
	ChatID    int64
	MessageID int
	// Text is the full raw message text, command included.
	Text string
	// Command is the lower-cased command name without the leading slash,
	// empty for free text.
	Command string
	Args    []string
	// ReplyTo is set when the message replies to an earlier one.
	ReplyTo *ReplyRef
}

// ReplyRef locates the message an event replied to.
type ReplyRef struct {
	FromChatID int64
	MessageID  int
}

// IsCommand reports whether the event carries a command.
func (e Event) IsCommand() bool { return e.Command != "" }
