package action

// Options 校验选项
type Options struct {
	// StrictRows 要求每一行宽度与首行一致；关闭时仅按首行宽度计算列数
	StrictRows bool
}

// DefaultOptions 默认校验选项
func DefaultOptions() Options {
	return Options{StrictRows: true}
}

// Shape 返回二维数组的行数与首行宽度
func Shape[T any](values [][]T) (rows, cols int) {
	rows = len(values)
	if rows > 0 {
		cols = len(values[0])
	}
	return rows, cols
}

// CheckDimensions 校验数组形状是否与区域一致；单个单元格不做约束
func CheckDimensions[T any](expr string, values [][]T, opts Options) error {
	r, err := ParseRange(expr)
	if err != nil {
		return err
	}
	if r.Single {
		return nil
	}

	rows, cols := Shape(values)
	if rows != r.Rows() || cols != r.Cols() {
		return &DimensionError{
			Range:        expr,
			ExpectedRows: r.Rows(),
			ExpectedCols: r.Cols(),
			ActualRows:   rows,
			ActualCols:   cols,
		}
	}

	if opts.StrictRows {
		for i := 1; i < rows; i++ {
			if w := len(values[i]); w != cols {
				return &DimensionError{
					Range:        expr,
					ExpectedRows: r.Rows(),
					ExpectedCols: r.Cols(),
					ActualRows:   rows,
					ActualCols:   cols,
					RaggedRow:    i + 1,
					RaggedWidth:  w,
				}
			}
		}
	}

	return nil
}
