package lookup

import "strings"

// ExtractRequest strips a chat message down to the argument of a command.
//
// Everything from the first " ||" on is dropped (spoiler tail), then every
// occurrence of command, prefix and "@"+mention is removed, and the result
// is trimmed. Empty prefix or mention are ignored.
func ExtractRequest(content, command, prefix, mention string) string {
	if i := strings.Index(content, " ||"); i >= 0 {
		content = content[:i]
	}

	for _, s := range []string{command, prefix} {
		if s != "" {
			content = strings.ReplaceAll(content, s, "")
		}
	}
	if mention != "" {
		content = strings.ReplaceAll(content, "@"+mention, "")
	}

	return strings.TrimSpace(content)
}
