package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"dcfassist/internal/llm"
)

func TestChunk_ShortText(t *testing.T) {
	t.Parallel()

	got := Chunk("  hello world  ", 100, 20)
	if len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("unexpected chunks: %q", got)
	}
	if got := Chunk("", 100, 20); len(got) != 0 {
		t.Fatalf("empty text should give no chunks, got %q", got)
	}
}

func TestChunk_BreaksAtSentence(t *testing.T) {
	t.Parallel()

	// 句号位于窗口后半段，应在句号后断开
	text := strings.Repeat("a", 7) + "." + strings.Repeat("b", 10)
	got := Chunk(text, 10, 2)
	if len(got) < 2 {
		t.Fatalf("expected several chunks, got %q", got)
	}
	if got[0] != strings.Repeat("a", 7)+"." {
		t.Fatalf("first chunk want=%q got=%q", strings.Repeat("a", 7)+".", got[0])
	}
	// 下一段从断点前 overlap 个字符开始
	if !strings.HasPrefix(got[1], "a.") {
		t.Fatalf("second chunk should overlap, got %q", got[1])
	}
}

func TestChunk_EarlyPeriodIgnored(t *testing.T) {
	t.Parallel()

	text := "ab." + strings.Repeat("c", 20)
	got := Chunk(text, 10, 0)
	if got[0] != "ab."+strings.Repeat("c", 7) {
		t.Fatalf("break before half window should be ignored, got %q", got[0])
	}
}

func TestChunk_CoversTextAndTerminates(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("Revenue grew strongly. ", 200)
	got := Chunk(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(got) == 0 {
		t.Fatalf("no chunks")
	}
	for i, c := range got {
		if n := len([]rune(c)); n > DefaultChunkSize {
			t.Fatalf("chunk %d too long: %d", i, n)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(text), got[len(got)-1][len(got[len(got)-1])-10:]) {
		t.Fatalf("last chunk should reach the end of the text")
	}

	// overlap 不小于 size 时也必须前进
	if got := Chunk(strings.Repeat("x", 50), 10, 10); len(got) != 5 {
		t.Fatalf("want=5 got=%d", len(got))
	}
}

func TestChunk_CountsRunes(t *testing.T) {
	t.Parallel()

	got := Chunk(strings.Repeat("营", 25), 10, 0)
	if len(got) != 3 || len([]rune(got[2])) != 5 {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	if got := Cosine([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors want=1 got=%v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors want=0 got=%v", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("zero vector want=0 got=%v", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 1}); got != 0 {
		t.Fatalf("length mismatch want=0 got=%v", got)
	}
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := llm.HashEmbedder{Dim: 128}
	chunks := []string{
		"The weather was pleasant in spring.",
		"Revenue increased 12 percent year over year.",
		"Management expects EBITDA margin expansion.",
	}
	ix, err := Build(ctx, e, chunks)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	matches, err := ix.Search(ctx, e, "revenue year over year", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("want 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk != chunks[1] {
		t.Fatalf("best match want=%q got=%q", chunks[1], matches[0].Chunk)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatalf("matches not sorted: %+v", matches)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, llm.ErrUnavailable
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := Build(ctx, nil, []string{"a"}); !errors.Is(err, ErrNoEmbedder) {
		t.Fatalf("want ErrNoEmbedder, got %v", err)
	}
	if _, err := Build(ctx, failingEmbedder{}, []string{"a"}); !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}

	var empty *Index
	if got, err := empty.Search(ctx, failingEmbedder{}, "q", 3); err != nil || got != nil {
		t.Fatalf("search on empty index want nil, got %v %v", got, err)
	}
}
