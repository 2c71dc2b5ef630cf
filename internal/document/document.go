package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrExtractFailed = errors.New("failed to extract text from PDF")
	ErrEmptyDocument = errors.New("document contains no text")
)

// Extractor 从上传文件中提取纯文本
type Extractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
}

// PDFExtractor 基于 ledongthuc/pdf 的文本提取
type PDFExtractor struct{}

// Extract 逐页提取文本，页与页之间以换行分隔
func (PDFExtractor) Extract(ctx context.Context, content []byte) (text string, err error) {
	// 损坏的 PDF 可能让解析器 panic
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrExtractFailed, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtractFailed, i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return Normalize(sb.String()), nil
}

// Normalize NFKC 规范化并去除首尾空白，合并连字与全角字符
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFKC.String(text))
}

// IsPDFName 文件名是否以 .pdf 结尾（不区分大小写）
func IsPDFName(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".pdf")
}
