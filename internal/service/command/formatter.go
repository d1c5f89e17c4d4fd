package command

import (
	"fmt"
	"strings"
)

// Replies are light markdown; Telegram renders it, the REPL prints it as is.

func heading(title string) string {
	return "**" + title + "**\n"
}

func field(label, value string) string {
	return fmt.Sprintf("%s: `%s`\n", label, value)
}

func bullets(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	return sb.String()
}

func join(sections ...string) string {
	return strings.Join(sections, "\n")
}
