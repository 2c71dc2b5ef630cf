package action

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidColumn 列字母为空或包含 A-Z 以外的字符
	ErrInvalidColumn = errors.New("invalid column letters")
	// ErrColumnOverflow 列号超出 int 范围
	ErrColumnOverflow = errors.New("column number overflows int")
	// ErrMalformedRange 区域表达式不是 COLROW 或 COLROW:COLROW
	ErrMalformedRange = errors.New("malformed range")
	// ErrReversedRange 区域终点位于起点之前
	ErrReversedRange = errors.New("reversed range")
	// ErrDimensionMismatch 区域形状与数组形状不一致
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ErrorKind 拒绝原因分类
type ErrorKind int

const (
	MissingField ErrorKind = iota + 1
	MalformedRange
	ReversedRange
	DimensionMismatch
	MalformedPayload
	UnsupportedType
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case MalformedRange:
		return "malformed_range"
	case ReversedRange:
		return "reversed_range"
	case DimensionMismatch:
		return "dimension_mismatch"
	case MalformedPayload:
		return "malformed_payload"
	case UnsupportedType:
		return "unsupported_type"
	default:
		return "unknown"
	}
}

// RangeError 区域解析失败
type RangeError struct {
	Range string
	Err   error
}

func (e *RangeError) Error() string {
	if errors.Is(e.Err, ErrReversedRange) {
		return fmt.Sprintf("Invalid range format: %s (end cell precedes start cell)", e.Range)
	}
	return "Invalid range format: " + e.Range
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// DimensionError 区域与数组维度不一致
type DimensionError struct {
	Range        string
	ExpectedRows int
	ExpectedCols int
	ActualRows   int
	ActualCols   int

	// RaggedRow 为宽度与首行不同的行号（1 起始），0 表示数组本身是矩形
	RaggedRow   int
	RaggedWidth int
}

func (e *DimensionError) Error() string {
	if e.RaggedRow > 0 {
		return fmt.Sprintf("Range %s expects %dx%d, but row %d of values has %d columns",
			e.Range, e.ExpectedRows, e.ExpectedCols, e.RaggedRow, e.RaggedWidth)
	}
	return fmt.Sprintf("Range %s expects %dx%d, but values are %dx%d",
		e.Range, e.ExpectedRows, e.ExpectedCols, e.ActualRows, e.ActualCols)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// Rejection 单个被丢弃动作的原因
type Rejection struct {
	Index  int // 在原始输入中的位置（1 起始）
	Type   Type
	Kind   ErrorKind
	Detail string
}

// String 渲染为 "Action N: ..." 或 "Action N (type): ..."
func (r Rejection) String() string {
	if r.Kind == MissingField || !r.Type.Known() {
		return fmt.Sprintf("Action %d: %s", r.Index, r.Detail)
	}
	return fmt.Sprintf("Action %d (%s): %s", r.Index, r.Type, r.Detail)
}

// kindOf 将检查错误映射为拒绝分类
func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrReversedRange):
		return ReversedRange
	case errors.Is(err, ErrMalformedRange):
		return MalformedRange
	default:
		return DimensionMismatch
	}
}
