package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Batch 有序动作列表，JSON 解码时逐元素容错
type Batch []Action

// UnmarshalJSON 仅当输入不是 JSON 数组时失败
func (b *Batch) UnmarshalJSON(data []byte) error {
	actions, err := DecodeBatch(data)
	if err != nil {
		return err
	}
	*b = actions
	return nil
}

// DecodeBatch 解码动作数组；单个元素的问题转为 *Invalid，不影响其他元素
func DecodeBatch(data []byte) ([]Action, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}

	actions := make([]Action, 0, len(items))
	for _, raw := range items {
		actions = append(actions, Decode(raw))
	}
	return actions, nil
}

// Decode 解码单个动作，从不返回 nil
func Decode(raw json.RawMessage) Action {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return &Invalid{Kind: MalformedPayload, Reason: "Action must be a JSON object", raw: raw}
	}

	d := &fieldDecoder{fields: fields}

	var typ string
	d.decode("type", &typ, "a string")
	if d.reason != "" {
		return &Invalid{Kind: UnsupportedType, Reason: "Action type must be a string", raw: raw}
	}
	if typ == "" {
		return &Invalid{Kind: UnsupportedType, Reason: "Missing action type", raw: raw}
	}

	t := Type(typ)
	var sheet string
	d.optional("sheet", &sheet)

	// 只有区域类动作的 range/values/formulas 需要严格类型，其余字段原样透传
	var a Action
	switch t {
	case TypeSetCellValue:
		v := &SetCellValue{Sheet: sheet, raw: raw}
		d.optional("cell", &v.Cell)
		d.optional("value", &v.Value)
		a = v
	case TypeSetFormula:
		v := &SetFormula{Sheet: sheet, raw: raw}
		d.optional("cell", &v.Cell)
		d.optional("formula", &v.Formula)
		a = v
	case TypeSetRangeValues:
		v := &SetRangeValues{Sheet: sheet, raw: raw}
		d.decode("range", &v.Range, "a string")
		d.decode("values", &v.Values, "a 2-D array")
		a = v
	case TypeSetRangeFormulas:
		v := &SetRangeFormulas{Sheet: sheet, raw: raw}
		d.decode("range", &v.Range, "a string")
		d.decode("formulas", &v.Formulas, "a 2-D array of strings")
		a = v
	case TypeClearRange:
		v := &ClearRange{Sheet: sheet, raw: raw}
		d.optional("range", &v.Range)
		a = v
	case TypeFormatCell:
		v := &FormatCell{Sheet: sheet, raw: raw}
		d.optional("cell", &v.Cell)
		d.optional("format", &v.Format)
		a = v
	default:
		return &Invalid{
			Declared: t,
			Sheet:    sheet,
			Kind:     UnsupportedType,
			Reason:   fmt.Sprintf("Unsupported action type %q", typ),
			raw:      raw,
		}
	}

	if d.reason != "" {
		return &Invalid{Declared: t, Sheet: sheet, Kind: MalformedPayload, Reason: d.reason, raw: raw}
	}
	return a
}

// fieldDecoder 按字段解码，记录第一个类型不符的严格字段
type fieldDecoder struct {
	fields map[string]json.RawMessage
	reason string
}

func (d *fieldDecoder) decode(name string, dst any, want string) {
	raw, ok := d.fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil && d.reason == "" {
		d.reason = fmt.Sprintf("%s must be %s", name, want)
	}
}

// optional 类型不符时保留零值，不记录错误；原始对象仍随动作输出
func (d *fieldDecoder) optional(name string, dst any) {
	raw, ok := d.fields[name]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}
