package serialize

import "strings"

// pickFence chooses a fence string that cannot collide with the content it
// wraps. It scans for the longest line-start run of backticks and of tildes
// (lines indented four or more spaces are code by Markdown rules and cannot
// open a fence, so they are ignored), picks the character with the shorter
// maximum run, and repeats it max(3, run+1) times.
func pickFence(content string) string {
	maxBacktick, maxTilde := 0, 0
	for _, line := range strings.Split(content, "\n") {
		indent := 0
		for indent < len(line) && line[indent] == ' ' {
			indent++
		}
		if indent >= 4 || indent >= len(line) {
			continue
		}
		ch := line[indent]
		if ch != '`' && ch != '~' {
			continue
		}
		run := 0
		for indent+run < len(line) && line[indent+run] == ch {
			run++
		}
		if ch == '`' && run > maxBacktick {
			maxBacktick = run
		}
		if ch == '~' && run > maxTilde {
			maxTilde = run
		}
	}

	ch, run := byte('`'), maxBacktick
	if maxTilde < maxBacktick {
		ch, run = '~', maxTilde
	}
	n := run + 1
	if n < 3 {
		n = 3
	}
	return strings.Repeat(string(ch), n)
}

// looksLikeDirective reports whether content contains bracket syntax that a
// re-parse could mistake for a live directive. Value blocks holding such
// content are marked non-processed.
func looksLikeDirective(content string) bool {
	return strings.Contains(content, "{%")
}
