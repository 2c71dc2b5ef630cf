package embedding

import "strings"

// 默认切片参数
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk 将文本切成可重叠的片段，按字符计数
// 未到结尾时优先在窗口后半段的最后一个 '.' 或 '\n' 处断开
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else if bp := breakPoint(runes[start:end]); bp > size/2 {
			end = start + bp + 1
		}

		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}
		if end >= len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func breakPoint(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
