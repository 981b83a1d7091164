package location

import "sort"

// NoFile is the name used for text that does not come from a file.
const NoFile = "<no file>"

// File is a named source text with a line index.
type File struct {
	Name     string
	Contents string

	lineBreaks []int
}

// NewFile indexes the line breaks of contents.
func NewFile(name, contents string) *File {
	f := &File{Name: name, Contents: contents}

	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			f.lineBreaks = append(f.lineBreaks, i)
		}
	}

	return f
}

// LineNumber returns the 1-based line and column of a source offset.
// Offsets out of range are clamped to the contents.
func (f *File) LineNumber(pos int) (line, char int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.Contents) {
		pos = len(f.Contents)
	}

	// number of line breaks strictly before pos
	idx := sort.SearchInts(f.lineBreaks, pos)
	lineStart := 0
	if idx > 0 {
		lineStart = f.lineBreaks[idx-1] + 1
	}

	return idx + 1, pos - lineStart + 1
}
