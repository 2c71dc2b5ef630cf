package workbook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"dcfassist/internal/action"
	"dcfassist/internal/model"
)

// ChangesSheet 预览动作的工作表名
const ChangesSheet = "Proposed Changes"

const maxSheetNameLen = 31

// Options 导出选项
type Options struct {
	// Apply 将动作写入目标工作表，而不仅仅列在预览表中
	Apply bool
}

// Export 将模型数据写成工作簿，并附加动作预览表
// actions 应当已经通过校验；开启 Apply 时写不进去的动作被跳过并返回，不影响其余动作
func Export(data model.ModelData, actions []action.Action, opts Options) (*excelize.File, []Skipped, error) {
	b := &book{
		f:      excelize.NewFile(),
		sheets: make(map[string]string),
		used:   make(map[string]bool),
	}

	for i, name := range data.SheetNames() {
		sheet := b.uniqueSheetName(name)
		if i == 0 {
			if err := b.f.SetSheetName("Sheet1", sheet); err != nil {
				_ = b.f.Close()
				return nil, nil, fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else if _, err := b.f.NewSheet(sheet); err != nil {
			_ = b.f.Close()
			return nil, nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		b.sheets[name] = sheet

		if err := writeSheet(b.f, sheet, data[name]); err != nil {
			_ = b.f.Close()
			return nil, nil, err
		}
	}

	var (
		skipped  []Skipped
		statuses []string
	)
	if opts.Apply {
		statuses = make([]string, len(actions))
		for i, a := range actions {
			if err := b.apply(a); err != nil {
				s := Skipped{Index: i + 1, Type: a.Type(), Reason: err.Error()}
				skipped = append(skipped, s)
				statuses[i] = "not applied: " + s.Reason
				continue
			}
			statuses[i] = "applied"
			if a.Type() == action.TypeFormatCell {
				statuses[i] = "listed only"
			}
		}
	}

	if len(actions) > 0 {
		if err := b.writeChanges(actions, statuses); err != nil {
			_ = b.f.Close()
			return nil, nil, err
		}
	}

	b.f.SetActiveSheet(0)
	return b.f, skipped, nil
}

// book 导出过程中的工作簿与工作表名映射
type book struct {
	f      *excelize.File
	sheets map[string]string // 模型表名 -> 工作簿表名
	used   map[string]bool   // 已占用的表名（小写）
}

func writeSheet(f *excelize.File, sheet string, s model.Sheet) error {
	for r, row := range s.Values {
		for c, v := range row {
			if formula := formulaAt(s.Formulas, r, c); formula != "" {
				v = formula
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := setCell(f, sheet, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func formulaAt(grid [][]any, r, c int) string {
	if r >= len(grid) || c >= len(grid[r]) {
		return ""
	}
	if s, ok := grid[r][c].(string); ok && model.IsFormula(s) {
		return s
	}
	return ""
}

// setCell 以 "=" 开头的字符串写为公式
func setCell(f *excelize.File, sheet, cell string, v any) error {
	if s, ok := v.(string); ok && model.IsFormula(s) {
		return f.SetCellFormula(sheet, cell, strings.TrimPrefix(s, "="))
	}
	if v == nil {
		return f.SetCellValue(sheet, cell, "")
	}
	return f.SetCellValue(sheet, cell, v)
}

// sanitizeSheetName 去掉 Excel 不允许的字符并截断到 31 个字符
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	return model.TruncateRunes(name, maxSheetNameLen)
}

// uniqueSheetName 清理名称并在重名时追加 " (n)"
func (b *book) uniqueSheetName(name string) string {
	base := sanitizeSheetName(name)
	candidate := base
	for i := 2; b.used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = model.TruncateRunes(base, maxSheetNameLen-len(suffix)) + suffix
	}
	b.used[strings.ToLower(candidate)] = true
	return candidate
}

// writeChanges 写预览表；statuses 非空时追加 Status 列
func (b *book) writeChanges(actions []action.Action, statuses []string) error {
	f := b.f
	sheet := b.uniqueSheetName(ChangesSheet)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := []any{"#", "Type", "Sheet", "Target", "Payload"}
	lastCol := "E1"
	if statuses != nil {
		header = append(header, "Status")
		lastCol = "F1"
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "E", 24); err != nil {
		return err
	}

	for i, a := range actions {
		target, payload := Describe(a)
		row := []any{i + 1, string(a.Type()), a.SheetName(), target, payload}
		if statuses != nil {
			row = append(row, statuses[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write change %d: %w", i+1, err)
		}
	}
	return nil
}

// Describe 动作的目标地址与内容摘要
func Describe(a action.Action) (target, payload string) {
	switch x := a.(type) {
	case *action.SetCellValue:
		return x.Cell, model.FormatValue(x.Value)
	case *action.SetFormula:
		return x.Cell, x.Formula
	case *action.SetRangeValues:
		rows, cols := action.Shape(x.Values)
		return x.Range, fmt.Sprintf("%dx%d values", rows, cols)
	case *action.SetRangeFormulas:
		rows, cols := action.Shape(x.Formulas)
		return x.Range, fmt.Sprintf("%dx%d formulas", rows, cols)
	case *action.ClearRange:
		return x.Range, "clear"
	case *action.FormatCell:
		b, err := json.Marshal(x.Format)
		if err != nil {
			return x.Cell, "format"
		}
		return x.Cell, string(b)
	default:
		return "", ""
	}
}
