// Package model defines the typed representation of a Copilot chat export.
//
// Values are built once by the parser and treated as read-only afterwards.
// Attachments and response elements are closed sets of variants; callers
// dispatch on them with a type switch.
package model

// Attachment is context attached to a request: one of FileAttachment,
// SelectionAttachment, FolderAttachment or InstructionsAttachment.
type Attachment interface {
	isAttachment()
}

// ResponseElement is one unit of assistant output: one of Text,
// InlineReference, CodeReference, EditSummary, ToolCall or Unrecognized.
//
// Unrecognized is the fallback for unknown element kinds, so new export
// versions decode instead of failing.
type ResponseElement interface {
	isResponseElement()
}
