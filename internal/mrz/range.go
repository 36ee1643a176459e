package mrz

import "fmt"

// Range addresses a run of characters within a single MRZ row. Column is
// inclusive, ColumnTo exclusive, Row is 0-based.
type Range struct {
	Column   int
	ColumnTo int
	Row      int
}

// NewRange validates column <= columnTo.
func NewRange(column, columnTo, row int) (Range, error) {
	if column > columnTo {
		return Range{}, invalidArgument("parameter column: invalid value %d: must be less than %d", column, columnTo)
	}
	return Range{Column: column, ColumnTo: columnTo, Row: row}, nil
}

// Len returns the number of characters the range covers.
func (r Range) Len() int {
	return r.ColumnTo - r.Column
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d,%d", r.Column, r.ColumnTo, r.Row)
}

// rng is the unchecked constructor for the fixed layouts.
func rng(column, columnTo, row int) Range {
	return Range{Column: column, ColumnTo: columnTo, Row: row}
}
