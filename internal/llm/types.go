package llm

import (
	"context"
	"strings"
)

// Message 单条对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 一次补全请求
type Request struct {
	Model       string
	Temperature float64
	Messages    []Message
}

// Prompt 单条用户消息的请求
func Prompt(model string, temperature float64, content string) Request {
	return Request{
		Model:       model,
		Temperature: temperature,
		Messages:    []Message{{Role: "user", Content: content}},
	}
}

// Completer 给定提示词返回模型回复
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Embedder 为一组文本生成向量，顺序与输入一致
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// ExtractJSON 去掉模型回复外层的 ```json 代码块标记
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
