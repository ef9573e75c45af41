// match.go implements literal line matching - the gate that decides whether
// an edit may proceed at all.
//
// Search text is always treated literally, never as a pattern. Config values
// are full of regex metacharacters (dots in hostnames, brackets in INI
// sections), and a search that silently becomes a pattern is how a change
// window turns into an incident.

package change

import "strings"

// Match is one matching line: 1-based line number plus the full line text.
type Match struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Containing returns every line of content that contains search as a
// substring, in file order. Substring, not anchored: the modify operation
// matches anywhere on the line.
func Containing(content, search string) []Match {
	return scan(content, func(line string) bool {
		return strings.Contains(line, search)
	})
}

// PrefixedWith returns every line of content that starts with anchor.
// Prefix, not substring: anchors identify a line, and a prefix rule keeps
// "key=" from matching a commented-out "# key=" further down.
func PrefixedWith(content, anchor string) []Match {
	return scan(content, func(line string) bool {
		return strings.HasPrefix(line, anchor)
	})
}

func scan(content string, pred func(string) bool) []Match {
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		if pred(line) {
			matches = append(matches, Match{Line: i + 1, Text: line})
		}
	}
	return matches
}
