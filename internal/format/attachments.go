package format

import (
	"fmt"
	"strings"

	"github.com/whee/cp2md/internal/model"
)

// Paths longer than this are shown as a link titled with the full path.
const maxInlinePathLen = 30

func renderAttachments(out *strings.Builder, attachments []model.Attachment) {
	out.WriteString("<details>\n")
	out.WriteString("<summary>📎 Context</summary>\n\n")
	for _, attachment := range attachments {
		fmt.Fprintf(out, "- %s\n", attachmentLine(attachment))
	}
	out.WriteString("\n</details>\n\n")
}

func attachmentLine(attachment model.Attachment) string {
	switch a := attachment.(type) {
	case model.FileAttachment:
		return pathDisplay(a.Name, a.Path) + " (file)"
	case model.SelectionAttachment:
		rng := fmt.Sprintf(":%d", a.StartLine)
		if a.StartLine != a.EndLine {
			rng = fmt.Sprintf(":%d-%d", a.StartLine, a.EndLine)
		}
		return pathDisplay(a.Name, a.Path) + rng + " (selection)"
	case model.FolderAttachment:
		return pathDisplay(a.Name, a.Path) + " (folder)"
	case model.InstructionsAttachment:
		return fmt.Sprintf("`%s` (instructions)", a.Name)
	default:
		return ""
	}
}

// pathDisplay shows name as inline code, linking long paths so the full
// path is still available on hover.
func pathDisplay(name, path string) string {
	if path == "" || len(path) <= maxInlinePathLen {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("[`%s`](%s \"%s\")", name, path, path)
}
