package command

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseResult is one shell line split into a verb and its arguments.
type ParseResult struct {
	// Command is the verb lowercased for registry lookup.
	Command string
	// Word is the verb as typed, used in error replies.
	Word string
	// Args are the whitespace-separated words after the verb.
	Args []string
	// RawArgs is the text after the verb with outer whitespace removed.
	RawArgs string
}

// Parse splits line into a verb and arguments. Any run of whitespace
// separates words.
//
// Postcondition: Command is empty exactly when line is blank; Args is nil
// when no arguments follow the verb.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	word, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		word, rest = line[:i], strings.TrimSpace(line[i:])
	}
	pr := ParseResult{Command: strings.ToLower(word), Word: word, RawArgs: rest}
	if rest != "" {
		pr.Args = strings.Fields(rest)
	}
	return pr
}

// HasArgs reports whether at least n arguments were given.
func (pr ParseResult) HasArgs(n int) bool {
	return len(pr.Args) >= n
}

// Joined rejoins the arguments from index from onward with single spaces.
func (pr ParseResult) Joined(from int) string {
	if from >= len(pr.Args) {
		return ""
	}
	return strings.Join(pr.Args[from:], " ")
}

// Float32s parses n consecutive arguments starting at from.
//
// Postcondition: ok is false if fewer than from+n arguments exist or any of
// them is not a finite number.
func (pr ParseResult) Float32s(from, n int) (vals []float32, ok bool) {
	if from < 0 || n < 0 || len(pr.Args) < from+n {
		return nil, false
	}
	vals = make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(pr.Args[from+i], 32)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		vals[i] = float32(f)
	}
	return vals, true
}
