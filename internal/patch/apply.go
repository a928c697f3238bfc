package patch

import "strings"

// Apply applies a file patch to the original content and returns the updated
// content. Context and removed lines must match the original exactly; any
// mismatch fails with a *ApplyError and no partial result. Patches for newly
// added files are built entirely from their added lines and never consult the
// original content
func Apply(original string, fp FilePatch) (string, error) {
	if fp.IsNew() {
		return newFileContent(fp), nil
	}

	src, hadTrailingNewline := splitLines(original)

	var out []string
	cursor := 0 // index into src of the next unconsumed line

	for hunkIndex, hunk := range fp.Hunks {
		// For pure insertions the old start names the line the insertion
		// follows rather than the first affected line
		target := hunk.OldStart - 1
		if hunk.OldLines == 0 {
			target = hunk.OldStart
		}
		if target < cursor || target > len(src) {
			return original, &ApplyError{
				Path:       fp.Path(),
				HunkIndex:  hunkIndex,
				LineNumber: hunk.OldStart,
				Expected:   "hunk within file bounds",
				Found:      "hunk out of range",
			}
		}

		out = append(out, src[cursor:target]...)
		cursor = target

		for _, line := range hunk.Lines {
			switch line.Op {
			case OpContext, OpDelete:
				if cursor >= len(src) || src[cursor] != line.Text {
					found := "<end of file>"
					if cursor < len(src) {
						found = src[cursor]
					}
					return original, &ApplyError{
						Path:       fp.Path(),
						HunkIndex:  hunkIndex,
						LineNumber: cursor + 1,
						Expected:   line.Text,
						Found:      found,
					}
				}
				if line.Op == OpContext {
					out = append(out, line.Text)
				}
				cursor++
			case OpAdd:
				out = append(out, line.Text)
			}
		}
	}

	out = append(out, src[cursor:]...)

	result := strings.Join(out, "\n")
	if hadTrailingNewline && !fp.NoTrailingNewline {
		result += "\n"
	}
	return result, nil
}

// newFileContent assembles the content of a newly added file from the patch's
// added lines
func newFileContent(fp FilePatch) string {
	var lines []string
	for _, hunk := range fp.Hunks {
		for _, line := range hunk.Lines {
			if line.Op == OpAdd {
				lines = append(lines, line.Text)
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}
	content := strings.Join(lines, "\n")
	if !fp.NoTrailingNewline {
		content += "\n"
	}
	return content
}

// splitLines splits content into lines without a trailing empty element,
// reporting whether the content ended with a newline
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	hadTrailingNewline := strings.HasSuffix(content, "\n")
	if hadTrailingNewline {
		content = content[:len(content)-1]
	}
	return strings.Split(content, "\n"), hadTrailingNewline
}
