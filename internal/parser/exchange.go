package parser

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/whee/cp2md/internal/model"
)

// Response element kinds as they appear in the export's "kind" field.
const (
	kindInlineReference = "inlineReference"
	kindCodeblockURI    = "codeblockUri"
	kindTextEditGroup   = "textEditGroup"
	kindToolInvocation  = "toolInvocationSerialized"
)

// Attachment kinds as they appear in variableData.variables[].kind.
const (
	varKindFile       = "file"
	varKindPromptFile = "promptFile"
	varKindFolder     = "folder"
)

// decodeExchange never fails; every field has a default.
func decodeExchange(v gjson.Result) model.Exchange {
	timestamp, _ := int64At(v, "timestamp")
	userText, _ := str(v, "message", "text")

	return model.Exchange{
		Timestamp:   timestamp,
		ModelID:     optStr(v, "modelId"),
		AgentName:   optStr(v, "agent", "name"),
		Attachments: decodeAttachments(v),
		UserText:    userText,
		Response:    decodeResponse(v),
	}
}

func decodeResponse(v gjson.Result) []model.ResponseElement {
	items := array(v, "response")
	elements := make([]model.ResponseElement, 0, len(items))
	for _, item := range items {
		elements = append(elements, decodeResponseElement(item))
	}
	return elements
}

// decodeResponseElement dispatches on the "kind" tag first. Only untagged
// elements are considered for the plain {"value": "..."} text shape.
func decodeResponseElement(v gjson.Result) model.ResponseElement {
	if kind, ok := str(v, "kind"); ok {
		switch kind {
		case kindInlineReference:
			name := optStr(v, "name")
			if name == nil {
				// Symbol references carry the name one level deeper.
				name = optStr(v, "inlineReference", "name")
			}
			path, _ := str(v, "inlineReference", "path")
			return model.InlineReference{Name: name, Path: path}
		case kindCodeblockURI:
			path, _ := str(v, "uri", "path")
			return model.CodeReference{Path: path}
		case kindTextEditGroup:
			path, _ := str(v, "uri", "path")
			return model.EditSummary{Path: path, Edits: decodeEdits(v)}
		case kindToolInvocation:
			return model.ToolCall{Summary: optStr(v, "pastTenseMessage", "value")}
		default:
			return model.Unrecognized{}
		}
	}

	if text, ok := str(v, "value"); ok {
		return model.Text{Content: text}
	}
	return model.Unrecognized{}
}

// decodeEdits flattens edits: [[{text}, ...], ...] into the edit texts in
// order.
func decodeEdits(v gjson.Result) []string {
	var edits []string
	for _, group := range array(v, "edits") {
		for _, edit := range array(group) {
			if text, ok := str(edit, "text"); ok {
				edits = append(edits, text)
			}
		}
	}
	return edits
}

func decodeAttachments(v gjson.Result) []model.Attachment {
	variables := array(v, "variableData", "variables")
	attachments := make([]model.Attachment, 0, len(variables))
	for _, variable := range variables {
		if attachment, ok := decodeAttachment(variable); ok {
			attachments = append(attachments, attachment)
		}
	}
	return attachments
}

// decodeAttachment reports false for kinds that carry nothing worth
// rendering (tool, promptText and anything unknown).
func decodeAttachment(v gjson.Result) (model.Attachment, bool) {
	kind, _ := str(v, "kind")
	rawName, _ := str(v, "name")
	name := cleanAttachmentName(rawName)

	switch kind {
	case varKindFile:
		path, ok := str(v, "value", "uri", "path")
		if !ok {
			path, _ = str(v, "value", "path")
		}

		if rng := lookup(v, "value", "range"); rng.Exists() {
			start := uint32(1)
			if n, ok := uint64At(rng, "startLineNumber"); ok {
				start = uint32(n)
			}
			end := start
			if n, ok := uint64At(rng, "endLineNumber"); ok {
				end = uint32(n)
			}

			// A range spanning line 1..1 is how whole files are sometimes
			// reported, so it only counts as a selection with other evidence.
			id, _ := str(v, "id")
			if strings.Contains(id, "selection") || start != end || start > 1 {
				return model.SelectionAttachment{
					Name:      name,
					Path:      path,
					StartLine: start,
					EndLine:   end,
				}, true
			}
		}

		return model.FileAttachment{Name: name, Path: path}, true
	case varKindPromptFile:
		return model.InstructionsAttachment{Name: name}, true
	case varKindFolder:
		path, _ := str(v, "value", "path")
		return model.FolderAttachment{Name: name, Path: path}, true
	default:
		return nil, false
	}
}

// cleanAttachmentName drops the "file:" or "prompt:" prefix the exporter
// puts on variable names.
func cleanAttachmentName(name string) string {
	if rest, ok := strings.CutPrefix(name, "file:"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(name, "prompt:"); ok {
		return rest
	}
	return name
}
