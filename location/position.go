package location

// Position locates a single directive occurrence:
//
//	#1{% #2cmd #3args#4 %}#5 ... #6{% endcmd %}#7
//
// Begin (#1), CmdBegin (#2), CmdArgBegin (#3), CmdEnd (#4) and End (#5) are
// set for every directive, EndblockBegin (#6) and EndblockEnd (#7) only for
// blocks. All of them are source offsets. Offset is the difference between a
// source offset and the matching index in the string currently being parsed,
// so the Rel* accessors give indexes into that string.
type Position struct {
	Offset int

	Begin         int
	CmdBegin      int
	CmdArgBegin   int
	CmdEnd        int
	End           int
	EndblockBegin int
	EndblockEnd   int
}

// NewPosition builds a position from indexes relative to the parsed string.
func NewPosition(offset, begin, cmdBegin, cmdEnd, end int) Position {
	return Position{
		Offset:      offset,
		Begin:       begin + offset,
		CmdBegin:    cmdBegin + offset,
		CmdArgBegin: cmdBegin + offset,
		CmdEnd:      cmdEnd + offset,
		End:         end + offset,
	}
}

// Rel converts a source offset into an index of the parsed string.
func (p Position) Rel(v int) int {
	return v - p.Offset
}

// Abs converts an index of the parsed string into a source offset.
func (p Position) Abs(v int) int {
	return v + p.Offset
}

func (p Position) RelBegin() int         { return p.Rel(p.Begin) }
func (p Position) RelCmdBegin() int      { return p.Rel(p.CmdBegin) }
func (p Position) RelCmdArgBegin() int   { return p.Rel(p.CmdArgBegin) }
func (p Position) RelCmdEnd() int        { return p.Rel(p.CmdEnd) }
func (p Position) RelEnd() int           { return p.Rel(p.End) }
func (p Position) RelEndblockBegin() int { return p.Rel(p.EndblockBegin) }
func (p Position) RelEndblockEnd() int   { return p.Rel(p.EndblockEnd) }

// IsBlock reports whether the endblock fields were filled in.
func (p Position) IsBlock() bool {
	return p.EndblockEnd > p.End
}

// Ordered reports whether the populated fields respect
// Begin <= CmdBegin <= CmdEnd <= End (<= EndblockBegin <= EndblockEnd).
func (p Position) Ordered() bool {
	if p.Begin > p.CmdBegin || p.CmdBegin > p.CmdEnd || p.CmdEnd > p.End {
		return false
	}
	if p.CmdArgBegin < p.CmdBegin || p.CmdArgBegin > p.CmdEnd {
		return false
	}
	if p.IsBlock() {
		return p.End <= p.EndblockBegin && p.EndblockBegin <= p.EndblockEnd
	}
	return true
}
