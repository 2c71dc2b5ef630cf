package modelcheck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dcfassist/internal/model"
)

// 问题类型
const (
	TypeMissing      = "missing"
	TypeFormula      = "formula"
	TypeCircular     = "circular"
	TypeReference    = "reference"
	TypeInconsistent = "inconsistent"
)

// 严重程度
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Issue 模型检查发现的问题
type Issue struct {
	Sheet    string `json:"sheet"`
	Cell     string `json:"cell"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

var (
	// 单元格引用，前面不能是字母、数字、'!' 或 ':'
	cellTokenPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_!:.'$])\$?([A-Z]{1,3})\$?([0-9]+)\b`)
	sheetRefPattern  = regexp.MustCompile(`(?:'((?:[^']|'')+)'|([A-Za-z0-9_.]+(?: [A-Za-z0-9_.]+)*))!\$?([A-Z]{1,3})\$?([0-9]+)`)
)

// CheckStructure 工作表没有数据
func CheckStructure(data model.ModelData) []Issue {
	var issues []Issue
	for _, name := range data.SheetNames() {
		if len(data[name].Values) == 0 {
			issues = append(issues, Issue{
				Sheet:    name,
				Cell:     "N/A",
				Type:     TypeMissing,
				Severity: SeverityCritical,
				Message:  "Sheet has no data or invalid structure",
			})
		}
	}
	return issues
}

// CheckFormulas 错误值与自引用
func CheckFormulas(data model.ModelData) []Issue {
	var issues []Issue
	for _, name := range data.SheetNames() {
		eachFormula(data[name], func(row, col int, formula string) {
			addr := cellAddress(row, col)
			if strings.Contains(formula, "#REF!") {
				issues = append(issues, Issue{name, addr, TypeFormula, SeverityCritical, "Formula contains invalid reference (#REF!)"})
			}
			if strings.Contains(formula, "#DIV/0!") {
				issues = append(issues, Issue{name, addr, TypeFormula, SeverityCritical, "Division by zero error"})
			}
			if referencesCell(formula, addr) {
				issues = append(issues, Issue{name, addr, TypeCircular, SeverityCritical, "Potential circular reference detected"})
			}
		})
	}
	return issues
}

// CheckCrossReferences 跨表引用指向空单元格或不存在的工作表
func CheckCrossReferences(data model.ModelData) []Issue {
	var issues []Issue
	for _, name := range data.SheetNames() {
		eachFormula(data[name], func(row, col int, formula string) {
			addr := cellAddress(row, col)
			for _, m := range sheetRefPattern.FindAllStringSubmatch(formula, -1) {
				target, quoted := m[1], true
				if target == "" {
					target, quoted = m[2], false
				}
				target = strings.ReplaceAll(target, "''", "'")
				ref := m[3] + m[4]

				sheet, ok := resolveSheet(data, target, quoted)
				if !ok {
					issues = append(issues, Issue{name, addr, TypeReference, SeverityWarning,
						fmt.Sprintf("References unknown sheet %s", target)})
					continue
				}
				if !cellHasValue(data[sheet], m[3], m[4]) {
					issues = append(issues, Issue{name, addr, TypeMissing, SeverityWarning,
						fmt.Sprintf("References %s!%s which may be empty", sheet, ref)})
				}
			}
		})
	}
	return issues
}

// eachFormula 遍历公式网格；没有公式网格时退回到取值中以 "=" 开头的字符串
func eachFormula(sheet model.Sheet, fn func(row, col int, formula string)) {
	grid := sheet.Formulas
	if len(grid) == 0 {
		grid = sheet.Values
	}
	for r, row := range grid {
		for c, v := range row {
			if s, ok := v.(string); ok && model.IsFormula(s) {
				fn(r, c, s)
			}
		}
	}
}

// resolveSheet 未加引号的名称可能带有前缀运算内容，逐词去掉后再匹配
func resolveSheet(data model.ModelData, name string, quoted bool) (string, bool) {
	if _, ok := data[name]; ok {
		return name, true
	}
	if quoted {
		return "", false
	}
	words := strings.Fields(name)
	for i := 1; i < len(words); i++ {
		candidate := strings.Join(words[i:], " ")
		if _, ok := data[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func cellHasValue(sheet model.Sheet, colLetters, rowDigits string) bool {
	if len(sheet.Values) == 0 {
		return false
	}
	col, err := excelize.ColumnNameToNumber(colLetters)
	if err != nil {
		return false
	}
	row, err := strconv.Atoi(rowDigits)
	if err != nil || row < 1 || row > len(sheet.Values) {
		return false
	}
	cells := sheet.Values[row-1]
	if col > len(cells) {
		return false
	}
	switch v := cells[col-1].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

func referencesCell(formula, addr string) bool {
	for _, m := range cellTokenPattern.FindAllStringSubmatch(formula, -1) {
		if m[1]+m[2] == addr {
			return true
		}
	}
	return false
}

func cellAddress(row, col int) string {
	addr, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "N/A"
	}
	return addr
}
