package mdast

import "sort"

// LineIndex is an immutable line-start offset table for one source buffer.
// It converts between byte offsets and 1-based line numbers; the serializer
// and parser both key tag regions through it.
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex precomputes line starts for src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(src)}
}

// LineCount reports the number of lines.
func (li *LineIndex) LineCount() int { return len(li.starts) }

// LineOf returns the 1-based line containing the byte offset.
func (li *LineIndex) LineOf(offset int) int {
	if offset < 0 {
		return 1
	}
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
	return i
}

// StartOf returns the byte offset where the 1-based line begins.
func (li *LineIndex) StartOf(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(li.starts) {
		return li.size
	}
	return li.starts[line-1]
}

// EndOf returns the byte offset one past the 1-based line, including its
// newline when present.
func (li *LineIndex) EndOf(line int) int {
	if line < 1 {
		return 0
	}
	if line >= len(li.starts) {
		return li.size
	}
	return li.starts[line]
}
