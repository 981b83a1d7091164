package preprocessor

import (
	"slices"
)

// LabelStack stores label positions, one level per recursion depth.
// Positions are indexes into the string parsed at that depth.
type LabelStack struct {
	levels []map[string][]int
}

// NewLevel pushes an empty level
func (l *LabelStack) NewLevel() {
	l.levels = append(l.levels, make(map[string][]int))
}

// Height returns the number of levels
func (l *LabelStack) Height() int {
	return len(l.levels)
}

func (l *LabelStack) top() map[string][]int {
	if len(l.levels) == 0 {
		l.NewLevel()
	}
	return l.levels[len(l.levels)-1]
}

// Add records a label at pos on the top level.
func (l *LabelStack) Add(name string, pos int) {
	top := l.top()
	positions := top[name]
	i, _ := slices.BinarySearch(positions, pos)
	top[name] = slices.Insert(positions, i, pos)
}

// Positions returns the sorted positions of name on the top level.
func (l *LabelStack) Positions(name string) []int {
	if len(l.levels) == 0 {
		return nil
	}
	return l.levels[len(l.levels)-1][name]
}

// Has reports whether name is defined on the top level.
func (l *LabelStack) Has(name string) bool {
	return len(l.Positions(name)) > 0
}

// Delete removes name from the top level.
func (l *LabelStack) Delete(name string) {
	if len(l.levels) == 0 {
		return
	}
	delete(l.levels[len(l.levels)-1], name)
}

// DilateLevel shifts the labels of level that are at or after pos by delta.
func (l *LabelStack) DilateLevel(level, pos, delta int) {
	if delta == 0 || level < 0 || level >= len(l.levels) {
		return
	}
	for _, positions := range l.levels[level] {
		for i, p := range positions {
			if p >= pos {
				positions[i] = p + delta
			}
		}
	}
}

// PopLevel removes the top level and merges its labels into the level
// below, shifted by offset: the position where the child string was
// spliced into its parent.
func (l *LabelStack) PopLevel(offset int) {
	if len(l.levels) == 0 {
		return
	}
	child := l.levels[len(l.levels)-1]
	l.levels = l.levels[:len(l.levels)-1]
	if len(l.levels) == 0 {
		return
	}
	for name, positions := range child {
		for _, p := range positions {
			l.Add(name, p+offset)
		}
	}
}

// Reset drops every level
func (l *LabelStack) Reset() {
	l.levels = nil
}
