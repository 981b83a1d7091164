package location

import (
	"fmt"
	"strings"
)

// Dilation records that the text starting at Pos changed length by Delta.
// Len is the length of the replacement text.
type Dilation struct {
	Pos   int
	Delta int
	Len   int
}

// Context is a diagnostic frame. Index 0 of the string parsed under the
// context corresponds to the source offset Offset of File. Dilations are
// recorded in the coordinates of that string, in the order the edits were made.
type Context struct {
	File        *File
	Offset      int
	Description string

	dilations []Dilation
}

// AddDilation records a length change at pos when the length of the
// replacement is unknown. Growth is assumed to be inserted text.
func (c *Context) AddDilation(pos, delta int) {
	if delta == 0 {
		return
	}
	c.dilations = append(c.dilations, Dilation{Pos: pos, Delta: delta, Len: max(delta, 0)})
}

// AddReplacement records that [start, end) was replaced by newLen bytes.
func (c *Context) AddReplacement(start, end, newLen int) {
	delta := newLen - (end - start)
	if delta == 0 {
		return
	}
	c.dilations = append(c.dilations, Dilation{Pos: start, Delta: delta, Len: newLen})
}

// Dilations returns the recorded edits, oldest first.
func (c *Context) Dilations() []Dilation {
	return c.dilations
}

// TruePosition maps an index of the (edited) parsed string back to a source
// offset. Indexes that fall inside replaced text map to the start of the
// replacement.
func (c *Context) TruePosition(pos int) int {
	for i := len(c.dilations) - 1; i >= 0; i-- {
		d := c.dilations[i]
		switch {
		case pos < d.Pos:
		case pos < d.Pos+d.Len:
			pos = d.Pos
		default:
			pos -= d.Delta
		}
	}

	return pos + c.Offset
}

// LineNumber returns the source line and column of an index of the parsed string.
func (c *Context) LineNumber(pos int) (line, char int) {
	return c.File.LineNumber(c.TruePosition(pos))
}

// Stack is the stack of contexts of one preprocessor run.
type Stack struct {
	frames []*Context
}

// New pushes a context for a new source file. Offset is the source offset
// of the text about to be parsed.
func (s *Stack) New(file *File, offset int, description string) {
	s.frames = append(s.frames, &Context{
		File:        file,
		Offset:      offset,
		Description: description,
	})
}

// Update pushes a context on the same file as the current one.
func (s *Stack) Update(offset int, description string) {
	file := NewFile(NoFile, "")
	if top := s.Top(); top != nil {
		file = top.File
	}
	s.New(file, offset, description)
}

// Pop removes the innermost context. Popping an empty stack is a no-op.
func (s *Stack) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Top returns the innermost context, or nil.
func (s *Stack) Top() *Context {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Empty reports whether no context was pushed.
func (s *Stack) Empty() bool {
	return len(s.frames) == 0
}

// Len returns the number of frames.
func (s *Stack) Len() int {
	return len(s.frames)
}

// Reset drops every frame.
func (s *Stack) Reset() {
	s.frames = nil
}

// Location returns the file name, line and column of the innermost context.
func (s *Stack) Location() (file string, line, char int) {
	top := s.Top()
	if top == nil {
		return NoFile, 1, 1
	}
	line, char = top.File.LineNumber(top.Offset)
	return top.File.Name, line, char
}

// Trace renders every described frame, outermost first, one per line:
//
//	file:line:char: description
func (s *Stack) Trace() string {
	var b strings.Builder
	for _, frame := range s.frames {
		if frame.Description == "" {
			continue
		}
		line, char := frame.File.LineNumber(frame.Offset)
		fmt.Fprintf(&b, "%s:%d:%d: %s\n", frame.File.Name, line, char, frame.Description)
	}
	return b.String()
}
