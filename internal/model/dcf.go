package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// 标准工作表名称
const (
	SheetAssumptions = "Assumptions"
	SheetFinancials  = "Financials"
	SheetDCF         = "DCF Calculation"
)

// Sheet 单个工作表的数据
type Sheet struct {
	Values   [][]any `json:"values"`
	Formulas [][]any `json:"formulas,omitempty"`
}

// ModelData DCF 模型数据，按工作表名索引
type ModelData map[string]Sheet

// SheetNames 按标准顺序返回工作表名：Assumptions, Financials, DCF Calculation，其余按字母序
func (m ModelData) SheetNames() []string {
	rank := map[string]int{SheetAssumptions: 0, SheetFinancials: 1, SheetDCF: 2}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// generatedModel 模型生成接口返回的 JSON 结构
type generatedModel struct {
	Assumptions     [][]any `json:"assumptions"`
	Financials      [][]any `json:"financials"`
	DCFCalculations [][]any `json:"dcfCalculations"`
}

// ParseGenerated 解析生成结果 {assumptions, financials, dcfCalculations} 为工作表数据
// 以 "=" 开头的字符串同时记入 Formulas
func ParseGenerated(data []byte) (ModelData, error) {
	var g generatedModel
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse generated model: %w", err)
	}
	if len(g.Assumptions) == 0 && len(g.Financials) == 0 && len(g.DCFCalculations) == 0 {
		return nil, fmt.Errorf("parse generated model: no sheets")
	}

	m := ModelData{}
	m.put(SheetAssumptions, g.Assumptions)
	m.put(SheetFinancials, g.Financials)
	m.put(SheetDCF, g.DCFCalculations)
	return m, nil
}

func (m ModelData) put(name string, rows [][]any) {
	if len(rows) == 0 {
		return
	}
	m[name] = Sheet{Values: rows, Formulas: FormulaGrid(rows)}
}

// FormulaGrid 从取值网格中提取公式；无公式的单元格为空字符串，全无公式时返回 nil
func FormulaGrid(rows [][]any) [][]any {
	found := false
	grid := make([][]any, len(rows))
	for i, row := range rows {
		grid[i] = make([]any, len(row))
		for j, v := range row {
			if s, ok := v.(string); ok && IsFormula(s) {
				grid[i][j] = s
				found = true
			} else {
				grid[i][j] = ""
			}
		}
	}
	if !found {
		return nil
	}
	return grid
}

// IsFormula 是否为公式字符串
func IsFormula(s string) bool {
	return strings.HasPrefix(s, "=")
}
