package action

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestValidate_SpecScenario_MissingPayload(t *testing.T) {
	t.Parallel()

	out, err := ValidateJSON([]byte(`[
		{"type":"setRangeValues","sheet":"Financials","range":"A1:B2","values":[[1,2],[3,4]]},
		{"type":"setRangeValues"}
	]`))
	if err != nil {
		t.Fatalf("ValidateJSON: %v", err)
	}
	if len(out.Validated) != 1 {
		t.Fatalf("validated want=1 got=%d", len(out.Validated))
	}
	errs := out.Errors()
	if len(errs) != 1 || errs[0] != "Action 2: Missing range or values" {
		t.Fatalf("unexpected errors: %q", errs)
	}
	if out.Rejections[0].Kind != MissingField {
		t.Fatalf("kind want=%v got=%v", MissingField, out.Rejections[0].Kind)
	}
}

func TestValidate_PreservesOrderAndIdentity(t *testing.T) {
	t.Parallel()

	a0 := &SetRangeValues{Sheet: "S", Range: "A1:B1", Values: [][]any{{1, 2}}}
	a1 := &SetRangeValues{Sheet: "S", Range: "A1:B1", Values: [][]any{{1, 2, 3}}}
	a2 := &SetRangeFormulas{Sheet: "S", Range: "C1:C2", Formulas: [][]string{{"=A1"}, {"=A2"}}}

	out := Validate([]Action{a0, a1, a2})

	if len(out.Validated) != 2 || out.Validated[0] != Action(a0) || out.Validated[1] != Action(a2) {
		t.Fatalf("unexpected validated: %#v", out.Validated)
	}
	errs := out.Errors()
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "Action 2 ") {
		t.Fatalf("unexpected errors: %q", errs)
	}
	if want := "Action 2 (setRangeValues): Range A1:B1 expects 1x2, but values are 1x3"; errs[0] != want {
		t.Fatalf("want=%q got=%q", want, errs[0])
	}
	if len(a1.Values[0]) != 3 {
		t.Fatalf("rejected action must not be mutated")
	}
}

func TestValidate_RangeMismatchMessage(t *testing.T) {
	t.Parallel()

	row := make([]any, 14)
	for i := range row {
		row[i] = i
	}
	out := Validate([]Action{&SetRangeValues{Sheet: "DCF", Range: "A1:O1", Values: [][]any{row}}})

	if len(out.Validated) != 0 {
		t.Fatalf("mismatched action must be dropped")
	}
	if want := "Action 1 (setRangeValues): Range A1:O1 expects 1x15, but values are 1x14"; out.Errors()[0] != want {
		t.Fatalf("want=%q got=%q", want, out.Errors()[0])
	}
	if out.Rejections[0].Kind != DimensionMismatch {
		t.Fatalf("kind want=%v got=%v", DimensionMismatch, out.Rejections[0].Kind)
	}
}

func TestValidate_FormulasRules(t *testing.T) {
	t.Parallel()

	out := Validate([]Action{
		&SetRangeFormulas{Sheet: "S", Range: "A1:A2"},
		&SetRangeFormulas{Sheet: "S", Formulas: [][]string{{"=1"}}},
		&SetRangeFormulas{Sheet: "S", Range: "A1-A2", Formulas: [][]string{{"=1"}, {"=2"}}},
		&SetRangeFormulas{Sheet: "S", Range: "A1:A2", Formulas: [][]string{{"=1"}, {"=2"}}},
	})

	want := []string{
		"Action 1: Missing range or formulas",
		"Action 2: Missing range or formulas",
		"Action 3 (setRangeFormulas): Invalid range format: A1-A2",
	}
	got := out.Errors()
	if len(got) != len(want) {
		t.Fatalf("errors want=%q got=%q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("error[%d] want=%q got=%q", i, want[i], got[i])
		}
	}
	if len(out.Validated) != 1 {
		t.Fatalf("validated want=1 got=%d", len(out.Validated))
	}
	if out.Rejections[2].Kind != MalformedRange {
		t.Fatalf("kind want=%v got=%v", MalformedRange, out.Rejections[2].Kind)
	}
}

func TestValidate_NonRangeActionsPassThrough(t *testing.T) {
	t.Parallel()

	actions := []Action{
		&SetCellValue{Sheet: "S", Cell: "A1", Value: 42.0},
		&SetFormula{Sheet: "S", Cell: "B1", Formula: "=A1*2"},
		&ClearRange{Sheet: "S", Range: "not a range"},
		&FormatCell{Sheet: "S", Cell: "A1", Format: map[string]any{"bold": true}},
		&SetCellValue{Sheet: "S"},
	}
	out := Validate(actions)

	if len(out.Rejections) != 0 {
		t.Fatalf("unexpected errors: %q", out.Errors())
	}
	if len(out.Validated) != len(actions) {
		t.Fatalf("validated want=%d got=%d", len(actions), len(out.Validated))
	}
	for i := range actions {
		if out.Validated[i] != actions[i] {
			t.Fatalf("action %d not passed through unchanged", i)
		}
	}
}

func TestValidate_SingleCellRangeIgnoresShape(t *testing.T) {
	t.Parallel()

	out := Validate([]Action{&SetRangeValues{Sheet: "S", Range: "B3", Values: [][]any{{1, 2, 3}, {4}}}})
	if len(out.Rejections) != 0 {
		t.Fatalf("single-cell range must not produce errors: %q", out.Errors())
	}
}

func TestValidate_ReversedAndRaggedAndNil(t *testing.T) {
	t.Parallel()

	var nilPtr *SetRangeValues
	out := Validate([]Action{
		&SetRangeValues{Sheet: "S", Range: "C3:A1", Values: [][]any{{1}}},
		&SetRangeValues{Sheet: "S", Range: "A1:B2", Values: [][]any{{1, 2}, {3}}},
		nil,
		nilPtr,
	})

	want := []string{
		"Action 1 (setRangeValues): Invalid range format: C3:A1 (end cell precedes start cell)",
		"Action 2 (setRangeValues): Range A1:B2 expects 2x2, but row 2 of values has 1 columns",
		"Action 3: Missing action type",
		"Action 4: Missing action type",
	}
	got := out.Errors()
	if len(got) != len(want) {
		t.Fatalf("errors want=%q got=%q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("error[%d] want=%q got=%q", i, want[i], got[i])
		}
	}
	if out.Rejections[0].Kind != ReversedRange {
		t.Fatalf("kind want=%v got=%v", ReversedRange, out.Rejections[0].Kind)
	}

	lenient := NewValidator(Options{StrictRows: false}, nil)
	out = lenient.Validate([]Action{&SetRangeValues{Sheet: "S", Range: "A1:B2", Values: [][]any{{1, 2}, {3}}}})
	if len(out.Validated) != 1 {
		t.Fatalf("lenient validator should accept ragged rows: %q", out.Errors())
	}
}

func TestValidate_EmptyBatch(t *testing.T) {
	t.Parallel()

	out := Validate(nil)
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"validated":[],"errors":[]}` {
		t.Fatalf("unexpected json: %s", data)
	}
}

func TestValidate_ConcurrentUse(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultOptions(), nil)
	actions := []Action{
		&SetRangeValues{Sheet: "S", Range: "A1:B2", Values: [][]any{{1, 2}, {3, 4}}},
		&SetRangeValues{Sheet: "S", Range: "A1:B2", Values: [][]any{{1, 2}}},
		&ClearRange{Sheet: "S", Range: "A1:Z9"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				out := v.Validate(actions)
				if len(out.Validated) != 2 || len(out.Rejections) != 1 {
					t.Errorf("unexpected outcome: %d validated, %d rejected", len(out.Validated), len(out.Rejections))
					return
				}
			}
		}()
	}
	wg.Wait()
}
