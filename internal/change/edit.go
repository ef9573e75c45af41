// edit.go implements the content transformations applied after the match
// gate has passed. All functions are pure string -> string; the operations
// in internal/modify and internal/insert own file I/O and rollback.

package change

import "strings"

// ReplaceOnLines replaces every occurrence of old with new on each line that
// contains old, leaving all other lines untouched. "Single match" in the
// modify operation refers to line cardinality, so a lone matching line with
// the token repeated gets all occurrences replaced.
func ReplaceOnLines(content, old, new string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.Contains(line, old) {
			lines[i] = strings.ReplaceAll(line, old, new)
		}
	}
	return strings.Join(lines, "\n")
}

// InsertAfter inserts block immediately after the given 1-based line,
// preserving all existing content before and after verbatim. Multi-line
// blocks go in as one atomic unit.
func InsertAfter(content string, line int, block string) string {
	lines := strings.Split(content, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	blockLines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")

	out := make([]string, 0, len(lines)+len(blockLines))
	out = append(out, lines[:line]...)
	out = append(out, blockLines...)
	out = append(out, lines[line:]...)
	return strings.Join(out, "\n")
}

// AppendBlock appends block at end-of-file. Prior content is preserved
// byte-for-byte; a newline is added first only when the file does not
// already end with one. The result always ends with a newline so repeated
// appends stay line-oriented.
func AppendBlock(content, block string) string {
	block = strings.TrimSuffix(block, "\n") + "\n"
	if content == "" {
		return block
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + block
}
