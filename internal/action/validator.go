package action

import (
	"encoding/json"
	"io"
	"log/slog"
)

// Outcome 批量校验结果，两个列表都保持输入顺序
type Outcome struct {
	Validated  []Action
	Rejections []Rejection
}

// Errors 渲染拒绝原因，与 Rejections 一一对应
func (o Outcome) Errors() []string {
	errs := make([]string, 0, len(o.Rejections))
	for _, r := range o.Rejections {
		errs = append(errs, r.String())
	}
	return errs
}

// MarshalJSON 输出 {"validated": [...], "errors": [...]}
func (o Outcome) MarshalJSON() ([]byte, error) {
	validated := o.Validated
	if validated == nil {
		validated = []Action{}
	}
	return json.Marshal(struct {
		Validated []Action `json:"validated"`
		Errors    []string `json:"errors"`
	}{
		Validated: validated,
		Errors:    o.Errors(),
	})
}

// Validator 动作校验器。无可变状态，可并发使用。
type Validator struct {
	opts   Options
	logger *slog.Logger
}

// NewValidator 创建校验器；logger 为 nil 时不输出日志
func NewValidator(opts Options, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{opts: opts, logger: logger}
}

var defaultValidator = NewValidator(DefaultOptions(), nil)

// Validate 使用默认选项校验
func Validate(actions []Action) Outcome {
	return defaultValidator.Validate(actions)
}

// ValidateJSON 使用默认选项校验 JSON 动作数组
func ValidateJSON(data []byte) (Outcome, error) {
	return defaultValidator.ValidateJSON(data)
}

// ValidateJSON 解码并校验；仅当输入不是 JSON 数组时返回错误
func (v *Validator) ValidateJSON(data []byte) (Outcome, error) {
	actions, err := DecodeBatch(data)
	if err != nil {
		return Outcome{}, err
	}
	return v.Validate(actions), nil
}

// Validate 按输入顺序分拣动作：通过的原样保留，失败的各产生一条拒绝原因
func (v *Validator) Validate(actions []Action) Outcome {
	out := Outcome{
		Validated: make([]Action, 0, len(actions)),
	}

	for i, a := range actions {
		idx := i + 1
		if r, ok := v.check(idx, a); !ok {
			v.logger.Debug("action rejected",
				"index", idx, "type", string(r.Type), "kind", r.Kind.String(), "detail", r.Detail)
			out.Rejections = append(out.Rejections, r)
			continue
		}
		out.Validated = append(out.Validated, a)
	}

	return out
}

func (v *Validator) check(idx int, a Action) (Rejection, bool) {
	if isNil(a) {
		return Rejection{Index: idx, Kind: UnsupportedType, Detail: "Missing action type"}, false
	}

	switch act := a.(type) {
	case *SetRangeValues:
		if act.Range == "" || len(act.Values) == 0 {
			return Rejection{Index: idx, Type: act.Type(), Kind: MissingField, Detail: "Missing range or values"}, false
		}
		if err := CheckDimensions(act.Range, act.Values, v.opts); err != nil {
			return Rejection{Index: idx, Type: act.Type(), Kind: kindOf(err), Detail: err.Error()}, false
		}
		rows, cols := Shape(act.Values)
		v.logger.Debug("action validated", "index", idx, "type", string(act.Type()), "range", act.Range, "rows", rows, "cols", cols)
		return Rejection{}, true

	case *SetRangeFormulas:
		if act.Range == "" || len(act.Formulas) == 0 {
			return Rejection{Index: idx, Type: act.Type(), Kind: MissingField, Detail: "Missing range or formulas"}, false
		}
		if err := CheckDimensions(act.Range, act.Formulas, v.opts); err != nil {
			return Rejection{Index: idx, Type: act.Type(), Kind: kindOf(err), Detail: err.Error()}, false
		}
		rows, cols := Shape(act.Formulas)
		v.logger.Debug("action validated", "index", idx, "type", string(act.Type()), "range", act.Range, "rows", rows, "cols", cols)
		return Rejection{}, true

	case *SetCellValue, *SetFormula, *ClearRange, *FormatCell:
		return Rejection{}, true

	case *Invalid:
		return Rejection{Index: idx, Type: act.Declared, Kind: act.Kind, Detail: act.Reason}, false

	default:
		return Rejection{Index: idx, Kind: UnsupportedType, Detail: "Unsupported action"}, false
	}
}

func isNil(a Action) bool {
	switch v := a.(type) {
	case nil:
		return true
	case *SetCellValue:
		return v == nil
	case *SetFormula:
		return v == nil
	case *SetRangeValues:
		return v == nil
	case *SetRangeFormulas:
		return v == nil
	case *ClearRange:
		return v == nil
	case *FormatCell:
		return v == nil
	case *Invalid:
		return v == nil
	}
	return false
}
