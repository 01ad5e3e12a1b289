package telegram

// Update is one element of a getUpdates response.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound or replied-to chat message.
type Message struct {
	MessageID      int      `json:"message_id"`
	From           *User    `json:"from"`
	Chat           Chat     `json:"chat"`
	Text           string   `json:"text"`
	ReplyToMessage *Message `json:"reply_to_message"`
}

// User identifies a message sender.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Chat identifies the conversation a message belongs to. For private chats
// the chat id equals the sender's user id.
type Chat struct {
	ID int64 `json:"id"`
}
