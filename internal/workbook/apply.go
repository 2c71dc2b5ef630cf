package workbook

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"dcfassist/internal/action"
)

// maxClearCells 单个 clearRange 允许清空的最大单元格数
const maxClearCells = 100000

// Skipped 开启 Apply 时未能写入工作簿的动作
type Skipped struct {
	Index  int // 在导出动作列表中的位置（1 起始）
	Type   action.Type
	Reason string
}

func (s Skipped) String() string {
	return fmt.Sprintf("Action %d (%s): not applied: %s", s.Index, s.Type, s.Reason)
}

// apply 把单个动作写入目标工作表，目标表不存在时新建
// 先检查地址，避免为写不进去的动作留下空表
func (b *book) apply(a action.Action) error {
	if a.SheetName() == "" {
		return errors.New("missing sheet")
	}
	if err := checkTarget(a); err != nil {
		return err
	}

	sheet, err := b.targetSheet(a.SheetName())
	if err != nil {
		return err
	}
	f := b.f

	switch x := a.(type) {
	case *action.SetCellValue:
		return setCell(f, sheet, x.Cell, x.Value)
	case *action.SetFormula:
		return setCell(f, sheet, x.Cell, ensureFormula(x.Formula))
	case *action.SetRangeValues:
		return writeRange(f, sheet, x.Range, x.Values, func(v any) any { return v })
	case *action.SetRangeFormulas:
		return writeRange(f, sheet, x.Range, x.Formulas, func(s string) any { return ensureFormula(s) })
	case *action.ClearRange:
		return clearRange(f, sheet, x.Range)
	case *action.FormatCell:
		// 格式内容由前端解释，工作簿中只在预览表列出
		return nil
	default:
		return fmt.Errorf("unsupported action type %q", a.Type())
	}
}

// checkTarget 校验单元格地址或区域表达式
func checkTarget(a action.Action) error {
	switch x := a.(type) {
	case *action.SetCellValue:
		return checkCell(x.Cell)
	case *action.SetFormula:
		return checkCell(x.Cell)
	case *action.SetRangeValues:
		_, err := action.ParseRange(x.Range)
		return err
	case *action.SetRangeFormulas:
		_, err := action.ParseRange(x.Range)
		return err
	case *action.ClearRange:
		_, err := action.ParseRange(x.Range)
		return err
	default:
		return nil
	}
}

func checkCell(cell string) error {
	if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
		return fmt.Errorf("invalid cell %q", cell)
	}
	return nil
}

func (b *book) targetSheet(name string) (string, error) {
	if s, ok := b.sheets[name]; ok {
		return s, nil
	}
	s := b.uniqueSheetName(name)
	if _, err := b.f.NewSheet(s); err != nil {
		return "", fmt.Errorf("create sheet %s: %w", s, err)
	}
	b.sheets[name] = s
	return s, nil
}

func writeRange[T any](f *excelize.File, sheet, expr string, grid [][]T, conv func(T) any) error {
	r, err := action.ParseRange(expr)
	if err != nil {
		return err
	}
	for i, row := range grid {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(r.Start.ColumnIndex+j, r.Start.Row+i)
			if err != nil {
				return err
			}
			if err := setCell(f, sheet, cell, conv(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func clearRange(f *excelize.File, sheet, expr string) error {
	r, err := action.ParseRange(expr)
	if err != nil {
		return err
	}
	if r.Rows()*r.Cols() > maxClearCells {
		return fmt.Errorf("range %s too large to clear", expr)
	}
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.ColumnIndex; col <= r.End.ColumnIndex; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := f.SetCellFormula(sheet, cell, ""); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureFormula(s string) string {
	if s == "" || s[0] == '=' {
		return s
	}
	return "=" + s
}
