package format

import "fmt"

// MaxHeadingOffset is the largest accepted Options.HeadingOffset.
const MaxHeadingOffset = 5

// Options controls which optional parts of a conversation are rendered.
type Options struct {
	// ShowTools adds a blockquoted line per tool invocation to the user
	// section.
	ShowTools bool
	// ShowTimestamps adds the request time to the metadata line.
	ShowTimestamps bool
	// ShowModel adds the model identifier to the metadata line.
	ShowModel bool
	// ShowAgent adds the @agent name to the metadata line.
	ShowAgent bool
	// ShowAttachments lists attached files, selections, folders and
	// instruction files in a collapsible block.
	ShowAttachments bool
	// HeadingOffset pushes every heading down by this many levels (0-5),
	// for embedding the output in a larger document.
	HeadingOffset int
}

// DefaultOptions returns the options used when nothing is configured:
// model, agent and attachments shown; tools and timestamps hidden.
func DefaultOptions() Options {
	return Options{
		ShowModel:       true,
		ShowAgent:       true,
		ShowAttachments: true,
	}
}

// Validate reports options that Markdown would have to clamp.
func (o Options) Validate() error {
	if o.HeadingOffset < 0 || o.HeadingOffset > MaxHeadingOffset {
		return fmt.Errorf("heading offset must be 0-%d, got %d", MaxHeadingOffset, o.HeadingOffset)
	}
	return nil
}

func (o Options) offset() int {
	return min(max(o.HeadingOffset, 0), MaxHeadingOffset)
}
