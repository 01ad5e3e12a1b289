package bot

import "strings"

// ParseCommand splits a message text into a command name and its arguments.
// Commands start with "/"; a "@botname" suffix on the command (used in group
// chats) is stripped. Returns an empty name for free text.
func ParseCommand(text string) (name string, args []string) {
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}
	fields := strings.Fields(text)
	head := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}
	if head == "" {
		return "", nil
	}
	return strings.ToLower(head), fields[1:]
}
