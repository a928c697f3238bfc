package patch

import (
	"strconv"
	"strings"
)

const nullDevice = "/dev/null"

// Parse splits unified-diff text into per-file patches. Conventional a/ and b/
// prefixes are stripped from file names so they can be used as repository
// paths. An empty diff yields an empty result; any malformed section fails the
// whole parse with a *ParseError
func Parse(diffText string) ([]FilePatch, error) {
	if strings.TrimSpace(diffText) == "" {
		return nil, nil
	}

	lines := strings.Split(diffText, "\n")
	if lines[len(lines)-1] == "" {
		// The final newline contributes no line of its own
		lines = lines[:len(lines)-1]
	}

	var patches []FilePatch
	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "--- "):
			fp, next, err := parseFileSection(lines, i)
			if err != nil {
				return nil, err
			}
			patches = append(patches, fp)
			i = next

		case isSectionPreamble(line) || strings.TrimSpace(line) == "":
			// Git decorations between file sections (diff --git, index,
			// mode changes) carry no patch content
			i++

		default:
			return nil, &ParseError{LineNumber: i + 1, Reason: "unexpected content outside a file section"}
		}
	}

	return patches, nil
}

func isSectionPreamble(line string) bool {
	for _, prefix := range []string{
		"diff --git ",
		"index ",
		"new file mode",
		"deleted file mode",
		"old mode",
		"new mode",
		"similarity index",
		"rename from",
		"rename to",
	} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// parseFileSection parses one `--- / +++` header pair and its hunks, starting
// at index start. It returns the patch and the index of the first unconsumed
// line
func parseFileSection(lines []string, start int) (FilePatch, int, error) {
	oldName := stripFilePrefix(strings.TrimPrefix(lines[start], "--- "))

	i := start + 1
	if i >= len(lines) || !strings.HasPrefix(lines[i], "+++ ") {
		return FilePatch{}, 0, &ParseError{LineNumber: i + 1, Reason: "missing +++ header"}
	}
	newName := stripFilePrefix(strings.TrimPrefix(lines[i], "+++ "))
	if newName == "" {
		// Writes are the only repository mutation; a section patching a file
		// away has no representable outcome
		return FilePatch{}, 0, &ParseError{LineNumber: i + 1, Reason: "file deletion sections are not supported"}
	}
	i++

	if i >= len(lines) || !strings.HasPrefix(lines[i], "@@ ") {
		return FilePatch{}, 0, &ParseError{LineNumber: i + 1, Reason: "missing hunk header"}
	}

	fp := FilePatch{OldName: oldName, NewName: newName}
	for i < len(lines) && strings.HasPrefix(lines[i], "@@ ") {
		hunk, next, err := parseHunk(lines, i, &fp)
		if err != nil {
			return FilePatch{}, 0, err
		}
		fp.Hunks = append(fp.Hunks, hunk)
		i = next
	}

	return fp, i, nil
}

func parseHunk(lines []string, start int, fp *FilePatch) (Hunk, int, error) {
	hunk, err := parseHunkHeader(lines[start], start+1)
	if err != nil {
		return Hunk{}, 0, err
	}

	oldRemaining := hunk.OldLines
	newRemaining := hunk.NewLines

	i := start + 1
	for oldRemaining > 0 || newRemaining > 0 {
		if i >= len(lines) {
			return Hunk{}, 0, &ParseError{LineNumber: i, Reason: "hunk ends before line counts are satisfied"}
		}
		line := lines[i]
		i++

		if strings.HasPrefix(line, `\`) {
			// "\ No newline at end of file" applies to the preceding line; when
			// it follows the new side, the patched file must not end in a newline
			if len(hunk.Lines) > 0 && hunk.Lines[len(hunk.Lines)-1].Op != OpDelete {
				fp.NoTrailingNewline = true
			}
			continue
		}

		if line == "" {
			// Some emitters and mail gateways strip the leading space from
			// blank context lines
			oldRemaining--
			newRemaining--
			if oldRemaining < 0 || newRemaining < 0 {
				return Hunk{}, 0, &ParseError{LineNumber: i, Reason: "hunk body is inconsistent with header line counts"}
			}
			hunk.Lines = append(hunk.Lines, Line{Op: OpContext, Text: ""})
			continue
		}

		op, text := Op(line[0]), line[1:]
		switch op {
		case OpContext:
			oldRemaining--
			newRemaining--
		case OpDelete:
			oldRemaining--
		case OpAdd:
			newRemaining--
		default:
			return Hunk{}, 0, &ParseError{LineNumber: i, Reason: "unrecognized line prefix " + strconv.QuoteRune(rune(op))}
		}
		if oldRemaining < 0 || newRemaining < 0 {
			return Hunk{}, 0, &ParseError{LineNumber: i, Reason: "hunk body is inconsistent with header line counts"}
		}

		hunk.Lines = append(hunk.Lines, Line{Op: op, Text: text})
	}

	// A trailing no-newline marker can follow the final hunk line
	if i < len(lines) && strings.HasPrefix(lines[i], `\`) {
		if len(hunk.Lines) > 0 && hunk.Lines[len(hunk.Lines)-1].Op != OpDelete {
			fp.NoTrailingNewline = true
		}
		i++
	}

	return hunk, i, nil
}

// parseHunkHeader parses "@@ -oldStart[,oldLines] +newStart[,newLines] @@"
func parseHunkHeader(line string, lineNumber int) (Hunk, error) {
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end < 0 {
		return Hunk{}, &ParseError{LineNumber: lineNumber, Reason: "unterminated hunk header"}
	}

	fields := strings.Fields(rest[:end])
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") || !strings.HasPrefix(fields[1], "+") {
		return Hunk{}, &ParseError{LineNumber: lineNumber, Reason: "invalid hunk header ranges"}
	}

	oldStart, oldLines, err := parseRange(fields[0][1:])
	if err != nil {
		return Hunk{}, &ParseError{LineNumber: lineNumber, Reason: "invalid old range in hunk header"}
	}
	newStart, newLines, err := parseRange(fields[1][1:])
	if err != nil {
		return Hunk{}, &ParseError{LineNumber: lineNumber, Reason: "invalid new range in hunk header"}
	}

	return Hunk{OldStart: oldStart, OldLines: oldLines, NewStart: newStart, NewLines: newLines}, nil
}

// parseRange parses "start" or "start,count"; a bare start implies count 1
func parseRange(s string) (int, int, error) {
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, err
	}
	count := 1
	if hasCount {
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return 0, 0, err
		}
	}
	return start, count, nil
}

// stripFilePrefix normalizes a diff header file name into a repository path
func stripFilePrefix(name string) string {
	// Names may carry a trailing tab and timestamp
	if idx := strings.IndexByte(name, '\t'); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)

	if name == nullDevice {
		return ""
	}
	if after, ok := strings.CutPrefix(name, "a/"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(name, "b/"); ok {
		return after
	}
	return name
}
