package model

import (
	"fmt"
	"strings"
)

// 上下文预览默认限制
const (
	DefaultContextRows  = 10
	DefaultContextChars = 3000
)

// BuildContext 生成模型文本摘要，供提示词使用：每个工作表前 maxRows 行，总长度截断到 maxChars 个字符
func BuildContext(data ModelData, maxRows, maxChars int) string {
	var sb strings.Builder

	for _, name := range data.SheetNames() {
		values := data[name].Values
		if len(values) == 0 {
			continue
		}

		sb.WriteString("\n")
		sb.WriteString(name)
		sb.WriteString(":\n")

		rows := values
		if maxRows > 0 && len(rows) > maxRows {
			rows = rows[:maxRows]
		}
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = FormatValue(v)
			}
			sb.WriteString(strings.Join(cells, " | "))
			sb.WriteString("\n")
		}
	}

	return TruncateRunes(sb.String(), maxChars)
}

// FormatValue 单元格值的文本形式
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// TruncateRunes 按字符截断；limit <= 0 表示不截断
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
