// Package patch parses unified-diff text and applies the resulting file
// patches to file content.
package patch

import "fmt"

// Op identifies the role of a single line within a hunk
type Op byte

const (
	OpContext Op = ' '
	OpAdd     Op = '+'
	OpDelete  Op = '-'
)

// Line is one line of a hunk body
type Line struct {
	Op   Op
	Text string
}

// Hunk is a contiguous block of changes within a file patch. Starts and counts
// are taken verbatim from the `@@` header; lines appear in their original order
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// FilePatch is the parsed diff for a single file. OldName is empty for newly
// added files (the diff's old side was /dev/null)
type FilePatch struct {
	OldName string
	NewName string
	Hunks   []Hunk

	// NoTrailingNewline is set when the diff marks the new side of the file as
	// not ending with a newline
	NoTrailingNewline bool
}

// IsNew reports whether the patch creates a file rather than modifying one
func (fp FilePatch) IsNew() bool {
	return fp.OldName == ""
}

// Path returns the repository path the patch applies to, preferring the new
// name so renames resolve to their destination
func (fp FilePatch) Path() string {
	if fp.NewName != "" {
		return fp.NewName
	}
	return fp.OldName
}

// ParseError indicates malformed diff text. Parsing is all-or-nothing: a
// single malformed section invalidates the whole diff
type ParseError struct {
	LineNumber int
	Reason     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed diff at line %d: %s", e.LineNumber, e.Reason)
}

// ApplyError indicates that a hunk's expected context or removed lines did not
// literally match the original content
type ApplyError struct {
	Path       string
	HunkIndex  int
	LineNumber int
	Expected   string
	Found      string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("hunk %d does not apply to %s at line %d: expected %q, found %q",
		e.HunkIndex+1, e.Path, e.LineNumber, e.Expected, e.Found)
}
