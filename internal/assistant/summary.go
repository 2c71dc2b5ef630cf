package assistant

import (
	"context"
	"fmt"
	"strings"

	"dcfassist/internal/llm"
	"dcfassist/internal/model"
)

const (
	summaryInputChars  = 3000
	summaryMaxChars    = 200
	summaryTemperature = 0.3

	// SummaryUnavailable 摘要失败时的占位文本
	SummaryUnavailable = "Financial document - summary unavailable"
)

// Summarize 生成两三句话的文档摘要，最长 200 个字符
func (a *Assistant) Summarize(ctx context.Context, text, filename string) string {
	if a.completer == nil {
		return SummaryUnavailable
	}

	prompt := summaryPrompt(filename, model.TruncateRunes(text, summaryInputChars))
	reply, err := a.completer.Complete(ctx, llm.Prompt(a.cfg.SummaryModel, summaryTemperature, prompt))
	if err != nil {
		a.logger.Warn("summary generation failed", "file", filename, "error", err)
		return SummaryUnavailable
	}

	summary := strings.TrimSpace(reply)
	if summary == "" {
		return SummaryUnavailable
	}
	if len([]rune(summary)) > summaryMaxChars {
		summary = model.TruncateRunes(summary, summaryMaxChars-3) + "..."
	}
	return summary
}

func summaryPrompt(filename, preview string) string {
	return fmt.Sprintf(`Analyze this financial document and provide a very brief 2-3 sentence summary.
Focus on: company name, document type (annual report, investor presentation, etc.), key financial metrics or time period if mentioned.

Document: %s

Content preview:
%s

Summary (2-3 sentences max):`, filename, preview)
}
