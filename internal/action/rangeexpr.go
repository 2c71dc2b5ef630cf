package action

import (
	"regexp"
	"strconv"
	"strings"
)

var cellPattern = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// CellAddress 单元格地址
type CellAddress struct {
	Column      string // 列字母
	ColumnIndex int    // 列号（1 起始）
	Row         int    // 行号（1 起始）
}

func (c CellAddress) String() string {
	return c.Column + strconv.Itoa(c.Row)
}

// Range 解析后的区域；Single 表示单个单元格，不做形状约束
type Range struct {
	Start  CellAddress
	End    CellAddress
	Single bool
}

// Rows 区域行数
func (r Range) Rows() int {
	return r.End.Row - r.Start.Row + 1
}

// Cols 区域列数
func (r Range) Cols() int {
	return r.End.ColumnIndex - r.Start.ColumnIndex + 1
}

func (r Range) String() string {
	if r.Single {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// ParseCell 解析 "A1" 形式的地址
func ParseCell(s string) (CellAddress, error) {
	m := cellPattern.FindStringSubmatch(s)
	if m == nil {
		return CellAddress{}, ErrMalformedRange
	}

	row, err := strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return CellAddress{}, ErrMalformedRange
	}

	col, err := ColumnToNumber(m[1])
	if err != nil {
		return CellAddress{}, ErrMalformedRange
	}

	return CellAddress{Column: m[1], ColumnIndex: col, Row: row}, nil
}

// ParseRange 解析 "A1" 或 "A1:C3"
func ParseRange(expr string) (Range, error) {
	parts := strings.Split(expr, ":")

	switch len(parts) {
	case 1:
		cell, err := ParseCell(parts[0])
		if err != nil {
			return Range{}, &RangeError{Range: expr, Err: ErrMalformedRange}
		}
		return Range{Start: cell, End: cell, Single: true}, nil

	case 2:
		start, err := ParseCell(parts[0])
		if err != nil {
			return Range{}, &RangeError{Range: expr, Err: ErrMalformedRange}
		}
		end, err := ParseCell(parts[1])
		if err != nil {
			return Range{}, &RangeError{Range: expr, Err: ErrMalformedRange}
		}
		if end.Row < start.Row || end.ColumnIndex < start.ColumnIndex {
			return Range{}, &RangeError{Range: expr, Err: ErrReversedRange}
		}
		return Range{Start: start, End: end}, nil

	default:
		return Range{}, &RangeError{Range: expr, Err: ErrMalformedRange}
	}
}
