package action

import (
	"errors"
	"testing"
)

func TestParseRange_TwoPart(t *testing.T) {
	t.Parallel()

	r, err := ParseRange("B2:K5")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if r.Single {
		t.Fatalf("expected two-part range")
	}
	if r.Start.Column != "B" || r.Start.Row != 2 || r.End.Column != "K" || r.End.Row != 5 {
		t.Fatalf("unexpected bounds: %+v", r)
	}
	if r.Rows() != 4 || r.Cols() != 10 {
		t.Fatalf("unexpected shape: %dx%d", r.Rows(), r.Cols())
	}
	if r.String() != "B2:K5" {
		t.Fatalf("String() = %q", r.String())
	}
}

func TestParseRange_SingleCell(t *testing.T) {
	t.Parallel()

	r, err := ParseRange("AA10")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !r.Single {
		t.Fatalf("expected single cell")
	}
	if r.Start.ColumnIndex != 27 || r.Start.Row != 10 {
		t.Fatalf("unexpected cell: %+v", r.Start)
	}
}

func TestParseRange_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"A1-C3",
		"1A:C3",
		"A1:",
		":B2",
		"a1:b2",
		"A:C",
		"1:3",
		"A0:B2",
		"A0",
		"A1:B2:C3",
		"$A$1:$B$2",
		"A1 :B2",
		"Sheet1!A1:B2",
	}
	for _, expr := range cases {
		_, err := ParseRange(expr)
		if !errors.Is(err, ErrMalformedRange) {
			t.Fatalf("ParseRange(%q) want ErrMalformedRange, got %v", expr, err)
		}
		var re *RangeError
		if !errors.As(err, &re) || re.Range != expr {
			t.Fatalf("ParseRange(%q) want *RangeError, got %T", expr, err)
		}
		if got, want := err.Error(), "Invalid range format: "+expr; got != want {
			t.Fatalf("message want=%q got=%q", want, got)
		}
	}
}

func TestParseRange_Reversed(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"C3:A1", "A3:C1", "C1:A3"} {
		_, err := ParseRange(expr)
		if !errors.Is(err, ErrReversedRange) {
			t.Fatalf("ParseRange(%q) want ErrReversedRange, got %v", expr, err)
		}
	}
}

func TestParseCell(t *testing.T) {
	t.Parallel()

	c, err := ParseCell("XFD1048576")
	if err != nil {
		t.Fatalf("ParseCell: %v", err)
	}
	if c.ColumnIndex != 16384 || c.Row != 1048576 || c.String() != "XFD1048576" {
		t.Fatalf("unexpected cell: %+v", c)
	}

	if _, err := ParseCell("A99999999999999999999999"); !errors.Is(err, ErrMalformedRange) {
		t.Fatalf("row overflow want ErrMalformedRange, got %v", err)
	}
}
