package model

import "time"

// Conversation is a decoded Copilot chat export.
type Conversation struct {
	ResponderName string
	Exchanges     []Exchange
}

// Exchange is one user message together with the assistant response to it.
type Exchange struct {
	// Timestamp is milliseconds since the Unix epoch, zero when unknown.
	Timestamp   int64
	ModelID     *string
	AgentName   *string
	Attachments []Attachment
	UserText    string
	Response    []ResponseElement
}

// FileAttachment is a whole file attached as context.
type FileAttachment struct {
	Name string
	Path string
}

// SelectionAttachment is a line range of a file attached as context.
// Line numbers are 1-indexed and inclusive.
type SelectionAttachment struct {
	Name      string
	Path      string
	StartLine uint32
	EndLine   uint32
}

// FolderAttachment is a directory attached as context.
type FolderAttachment struct {
	Name string
	Path string
}

// InstructionsAttachment is an instructions (prompt) file. It has no path.
type InstructionsAttachment struct {
	Name string
}

func (FileAttachment) isAttachment()         {}
func (SelectionAttachment) isAttachment()    {}
func (FolderAttachment) isAttachment()       {}
func (InstructionsAttachment) isAttachment() {}

// Text is a run of assistant Markdown.
type Text struct {
	Content string
}

// InlineReference is a file or symbol mentioned inline in the response.
type InlineReference struct {
	Name *string
	Path string
}

// CodeReference marks the source file of a code block. It is never rendered.
type CodeReference struct {
	Path string
}

// EditSummary records edits applied to a single file. Each entry of Edits is
// the full replacement text of one edit.
type EditSummary struct {
	Path  string
	Edits []string
}

// ToolCall is a tool invocation with its past-tense description, if any.
type ToolCall struct {
	Summary *string
}

// Unrecognized stands in for response elements this version cannot decode.
type Unrecognized struct{}

func (Text) isResponseElement()            {}
func (InlineReference) isResponseElement() {}
func (CodeReference) isResponseElement()   {}
func (EditSummary) isResponseElement()     {}
func (ToolCall) isResponseElement()        {}
func (Unrecognized) isResponseElement()    {}

// ExportSummary holds lightweight information about a chat export file.
type ExportSummary struct {
	Path          string
	Responder     string
	StartedAt     time.Time
	LastAt        time.Time
	ExchangeCount int
	Summary       string
}
