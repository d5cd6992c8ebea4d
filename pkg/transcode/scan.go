package transcode

import "strings"

// fence describes an open fenced code block.
type fence struct {
	char   byte
	length int
}

// splitLines cuts text into lines, each retaining its trailing newline when
// present. The concatenation of the result is always the input.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func stripEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// leadingIndent counts leading spaces, capping at four so callers can apply
// the CommonMark 0-3 rule.
func leadingIndent(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' && n < 4 {
		n++
	}
	return n
}

// openFence reports whether a line opens a fenced code block: 0-3 leading
// spaces then a run of at least three identical backticks or tildes. A
// backtick fence's info string may not contain further backticks.
func openFence(line string) (fence, bool) {
	body := stripEOL(line)
	indent := leadingIndent(body)
	if indent > 3 {
		return fence{}, false
	}
	rest := body[indent:]
	if rest == "" {
		return fence{}, false
	}
	char := rest[0]
	if char != '`' && char != '~' {
		return fence{}, false
	}
	run := 0
	for run < len(rest) && rest[run] == char {
		run++
	}
	if run < 3 {
		return fence{}, false
	}
	if char == '`' && strings.Contains(rest[run:], "`") {
		return fence{}, false
	}
	return fence{char: char, length: run}, true
}

// closesFence reports whether a line closes the given open fence: the same
// character, a run at least as long, and only whitespace afterward.
func closesFence(line string, f fence) bool {
	body := stripEOL(line)
	indent := leadingIndent(body)
	if indent > 3 {
		return false
	}
	rest := body[indent:]
	run := 0
	for run < len(rest) && rest[run] == f.char {
		run++
	}
	if run < f.length {
		return false
	}
	return strings.TrimSpace(rest[run:]) == ""
}

// backtickRuns returns the lengths and start offsets of each maximal backtick
// run in a line.
type btRun struct {
	start  int
	length int
}

func backtickRuns(line string) []btRun {
	var runs []btRun
	i := 0
	for i < len(line) {
		if line[i] != '`' {
			i++
			continue
		}
		start := i
		for i < len(line) && line[i] == '`' {
			i++
		}
		runs = append(runs, btRun{start: start, length: i - start})
	}
	return runs
}

// unpairedRun pairs backtick runs within a line the way CommonMark matches
// code spans (an opener closes at the next equal-length run) and returns the
// length of the first run left unpaired, or zero. A carried-over open length
// is consumed first.
func unpairedRun(line string, carried int) int {
	runs := backtickRuns(line)
	idx := 0
	if carried > 0 {
		for idx < len(runs) {
			if runs[idx].length == carried {
				idx++
				carried = 0
				break
			}
			idx++
		}
		if carried > 0 {
			return carried
		}
	}
	for idx < len(runs) {
		open := runs[idx]
		matched := false
		for j := idx + 1; j < len(runs); j++ {
			if runs[j].length == open.length {
				idx = j + 1
				matched = true
				break
			}
		}
		if !matched {
			return open.length
		}
	}
	return 0
}

// isBlank reports a paragraph break.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// scanner walks a document line by line, tracking fenced-code state and
// inline code spans left open across newlines. visit is called once per line
// with inCode true whenever the line must not be rewritten.
func scanLines(text string, visit func(lineNo int, line string, inCode bool) string) string {
	lines := splitLines(text)
	var out strings.Builder
	out.Grow(len(text))

	var open *fence
	inlineOpen := 0

	for i, line := range lines {
		lineNo := i + 1
		switch {
		case open != nil:
			out.WriteString(visit(lineNo, line, true))
			if closesFence(line, *open) {
				open = nil
			}
		case inlineOpen > 0:
			out.WriteString(visit(lineNo, line, true))
			if isBlank(line) {
				inlineOpen = 0
			} else {
				inlineOpen = unpairedRun(stripEOL(line), inlineOpen)
			}
		default:
			if f, ok := openFence(line); ok {
				// A fence-length backtick run in leading position is
				// treated as a potential fence even when it might be a
				// long inline span; skipping is the conservative choice.
				out.WriteString(visit(lineNo, line, true))
				open = &f
				continue
			}
			out.WriteString(visit(lineNo, line, false))
			inlineOpen = unpairedRun(stripEOL(line), 0)
		}
	}
	return out.String()
}
