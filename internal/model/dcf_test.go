package model

import (
	"strings"
	"testing"
)

func TestSheetNames_CanonicalOrder(t *testing.T) {
	t.Parallel()

	data := ModelData{
		"Sensitivity":    {},
		SheetDCF:         {},
		"Notes":          {},
		SheetFinancials:  {},
		SheetAssumptions: {},
	}
	got := strings.Join(data.SheetNames(), ",")
	want := "Assumptions,Financials,DCF Calculation,Notes,Sensitivity"
	if got != want {
		t.Fatalf("want=%s got=%s", want, got)
	}
}

func TestParseGenerated(t *testing.T) {
	t.Parallel()

	data, err := ParseGenerated([]byte(`{
		"assumptions": [["Assumption","Value"],["WACC","9%"]],
		"financials": [["Item","Year 0"],["Revenue",100]],
		"dcfCalculations": [["DCF Calculation","Year 1"],["Free Cash Flow","=Financials!B2"]]
	}`))
	if err != nil {
		t.Fatalf("ParseGenerated: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("want 3 sheets, got %d", len(data))
	}
	if data[SheetFinancials].Formulas != nil {
		t.Fatalf("financials has no formulas")
	}
	dcf := data[SheetDCF]
	if dcf.Formulas == nil || dcf.Formulas[1][1] != "=Financials!B2" || dcf.Formulas[0][0] != "" {
		t.Fatalf("unexpected formula grid: %v", dcf.Formulas)
	}

	if _, err := ParseGenerated([]byte(`{}`)); err == nil {
		t.Fatalf("empty model should fail")
	}
	if _, err := ParseGenerated([]byte(`not json`)); err == nil {
		t.Fatalf("invalid json should fail")
	}
}

func TestFallbackTemplate(t *testing.T) {
	t.Parallel()

	data := FallbackTemplate()
	if len(data[SheetAssumptions].Values) != 12 {
		t.Fatalf("assumptions rows want=12 got=%d", len(data[SheetAssumptions].Values))
	}
	fin := data[SheetFinancials]
	if len(fin.Values) != 11 || len(fin.Values[0]) != 7 {
		t.Fatalf("financials shape %dx%d", len(fin.Values), len(fin.Values[0]))
	}
	if fin.Formulas[10][6] != "=G7+G8-G9-G10" {
		t.Fatalf("unexpected formula: %v", fin.Formulas[10][6])
	}
	if data[SheetAssumptions].Formulas != nil {
		t.Fatalf("assumptions carry no formulas")
	}
}

func TestBuildContext(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 15)
	for i := range rows {
		rows[i] = []any{"Row", float64(i), true}
	}
	data := ModelData{
		SheetFinancials:  {Values: rows},
		SheetAssumptions: {Values: [][]any{{"WACC", "10%"}}},
		"Empty":          {},
	}

	got := BuildContext(data, DefaultContextRows, DefaultContextChars)
	if !strings.HasPrefix(got, "\nAssumptions:\nWACC | 10%\n\nFinancials:\nRow | 0 | true\n") {
		t.Fatalf("unexpected context:\n%s", got)
	}
	if strings.Contains(got, "Row | 10 | true") {
		t.Fatalf("only the first 10 rows should be included")
	}
	if strings.Contains(got, "Empty") {
		t.Fatalf("sheets without values are skipped")
	}

	if short := BuildContext(data, 10, 12); short != "\nAssumptions" {
		t.Fatalf("truncation want=%q got=%q", "\nAssumptions", short)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := TruncateRunes("增长率 growth", 3); got != "增长率" {
		t.Fatalf("got %q", got)
	}
	if got := TruncateRunes("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := TruncateRunes("abc", 0); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
