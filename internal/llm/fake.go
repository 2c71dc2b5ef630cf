package llm

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

// Fake 按顺序返回预置回复的 Completer，用于测试和离线运行
type Fake struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []Request
}

// NewFake 创建预置回复；回复用尽后重复最后一条
func NewFake(responses ...string) *Fake {
	return &Fake{responses: responses}
}

// NewFailingFake 每次调用都返回 err
func NewFailingFake(err error) *Fake {
	return &Fake{err: err}
}

func (f *Fake) Complete(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", ErrEmptyResponse
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

// Calls 已收到的请求
func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.calls...)
}

// HashEmbedder 词袋哈希向量，相同词汇的文本向量相近
type HashEmbedder struct {
	Dim int
}

func (h HashEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	dim := h.Dim
	if dim <= 0 {
		dim = 64
	}

	vectors := make([][]float32, len(inputs))
	for i, text := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make([]float32, dim)
		for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			hash := fnv.New32a()
			_, _ = hash.Write([]byte(word))
			v[hash.Sum32()%uint32(dim)]++
		}
		vectors[i] = v
	}
	return vectors, nil
}
