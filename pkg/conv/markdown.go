package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank

	telegramPolicy = newTelegramPolicy()
	webPolicy      = bluemonday.UGCPolicy()
)

// newTelegramPolicy allows only https://core.telegram.org/bots/api#html-style tags.
func newTelegramPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").OnElements("code")
	return p
}

func render(md []byte) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse(md), renderer)
}

// MarkdownToTelegramHTML renders model output into the HTML subset Telegram accepts.
func MarkdownToTelegramHTML(md []byte) string {
	return string(telegramPolicy.SanitizeBytes(render(md)))
}

// MarkdownToHTML renders model output for the browser with a user-content policy.
func MarkdownToHTML(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	return string(webPolicy.SanitizeBytes(render([]byte(md))))
}
