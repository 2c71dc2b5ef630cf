// Package action 校验 AI 生成的表格编辑动作：区域解析、维度一致性检查与批量分拣。
package action

import (
	"bytes"
	"encoding/json"
)

// Type 动作类型（线上 JSON 的 type 字段）
type Type string

const (
	TypeSetCellValue     Type = "setCellValue"
	TypeSetFormula       Type = "setFormula"
	TypeSetRangeValues   Type = "setRangeValues"
	TypeSetRangeFormulas Type = "setRangeFormulas"
	TypeClearRange       Type = "clearRange"
	TypeFormatCell       Type = "formatCell"
)

// Known 是否为支持的动作类型
func (t Type) Known() bool {
	switch t {
	case TypeSetCellValue, TypeSetFormula, TypeSetRangeValues,
		TypeSetRangeFormulas, TypeClearRange, TypeFormatCell:
		return true
	}
	return false
}

// Action 表格编辑动作。实现仅限本包内的变体。
type Action interface {
	Type() Type
	SheetName() string
	isAction()
}

// SetCellValue 写入单个单元格的值
type SetCellValue struct {
	Sheet string `json:"sheet"`
	Cell  string `json:"cell"`
	Value any    `json:"value"`

	raw json.RawMessage
}

// SetFormula 写入单个单元格的公式
type SetFormula struct {
	Sheet   string `json:"sheet"`
	Cell    string `json:"cell"`
	Formula string `json:"formula"`

	raw json.RawMessage
}

// SetRangeValues 以二维数组写入区域的值
type SetRangeValues struct {
	Sheet  string  `json:"sheet"`
	Range  string  `json:"range"`
	Values [][]any `json:"values"`

	raw json.RawMessage
}

// SetRangeFormulas 以二维数组写入区域的公式
type SetRangeFormulas struct {
	Sheet    string     `json:"sheet"`
	Range    string     `json:"range"`
	Formulas [][]string `json:"formulas"`

	raw json.RawMessage
}

// ClearRange 清空区域
type ClearRange struct {
	Sheet string `json:"sheet"`
	Range string `json:"range"`

	raw json.RawMessage
}

// FormatCell 设置单元格格式，Format 内容不做解释
type FormatCell struct {
	Sheet  string         `json:"sheet"`
	Cell   string         `json:"cell"`
	Format map[string]any `json:"format"`

	raw json.RawMessage
}

// Invalid 无法表示为任何已知变体的输入元素，始终被拒绝
type Invalid struct {
	Declared Type
	Sheet    string
	Kind     ErrorKind
	Reason   string

	raw json.RawMessage
}

func (a *SetCellValue) Type() Type     { return TypeSetCellValue }
func (a *SetFormula) Type() Type       { return TypeSetFormula }
func (a *SetRangeValues) Type() Type   { return TypeSetRangeValues }
func (a *SetRangeFormulas) Type() Type { return TypeSetRangeFormulas }
func (a *ClearRange) Type() Type       { return TypeClearRange }
func (a *FormatCell) Type() Type       { return TypeFormatCell }
func (a *Invalid) Type() Type          { return a.Declared }

func (a *SetCellValue) SheetName() string     { return a.Sheet }
func (a *SetFormula) SheetName() string       { return a.Sheet }
func (a *SetRangeValues) SheetName() string   { return a.Sheet }
func (a *SetRangeFormulas) SheetName() string { return a.Sheet }
func (a *ClearRange) SheetName() string       { return a.Sheet }
func (a *FormatCell) SheetName() string       { return a.Sheet }
func (a *Invalid) SheetName() string          { return a.Sheet }

func (*SetCellValue) isAction()     {}
func (*SetFormula) isAction()       {}
func (*SetRangeValues) isAction()   {}
func (*SetRangeFormulas) isAction() {}
func (*ClearRange) isAction()       {}
func (*FormatCell) isAction()       {}
func (*Invalid) isAction()          {}

func (a *SetCellValue) MarshalJSON() ([]byte, error) {
	type wire SetCellValue
	return marshalTagged(a.Type(), a.raw, (*wire)(a))
}

func (a *SetFormula) MarshalJSON() ([]byte, error) {
	type wire SetFormula
	return marshalTagged(a.Type(), a.raw, (*wire)(a))
}

func (a *SetRangeValues) MarshalJSON() ([]byte, error) {
	type wire SetRangeValues
	return marshalTagged(a.Type(), a.raw, (*wire)(a))
}

func (a *SetRangeFormulas) MarshalJSON() ([]byte, error) {
	type wire SetRangeFormulas
	return marshalTagged(a.Type(), a.raw, (*wire)(a))
}

func (a *ClearRange) MarshalJSON() ([]byte, error) {
	type wire ClearRange
	return marshalTagged(a.Type(), a.raw, (*wire)(a))
}

func (a *FormatCell) MarshalJSON() ([]byte, error) {
	type wire FormatCell
	return marshalTagged(a.Type(), a.raw, (*wire)(a))
}

func (a *Invalid) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	return json.Marshal(map[string]string{"type": string(a.Declared), "sheet": a.Sheet})
}

// marshalTagged 优先返回解码时的原始 JSON；否则序列化字段并在首位插入 type
func marshalTagged(t Type, raw json.RawMessage, v any) ([]byte, error) {
	if raw != nil {
		return raw, nil
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(string(t))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}
