package modelcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"dcfassist/internal/llm"
	"dcfassist/internal/logging"
	"dcfassist/internal/model"
)

const (
	aiModelSummaryChars = 4000
	aiTemperature       = 0.2
)

// Checker 规则检查加可选的模型辅助检查
type Checker struct {
	completer llm.Completer
	model     string
	logger    *slog.Logger
}

// NewChecker completer 为 nil 时只做规则检查
func NewChecker(completer llm.Completer, chatModel string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Checker{completer: completer, model: chatModel, logger: logger}
}

// Check 依次执行结构、公式、跨表引用和模型辅助检查
func (c *Checker) Check(ctx context.Context, data model.ModelData) []Issue {
	issues := make([]Issue, 0)
	issues = append(issues, CheckStructure(data)...)
	issues = append(issues, CheckFormulas(data)...)
	issues = append(issues, CheckCrossReferences(data)...)
	issues = append(issues, c.aiIssues(ctx, data)...)
	return issues
}

// aiIssues 调用失败或回复无法解析时只记录日志
func (c *Checker) aiIssues(ctx context.Context, data model.ModelData) []Issue {
	if c.completer == nil {
		return nil
	}

	summary, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("model check: encode model data", "error", err)
		return nil
	}

	reply, err := c.completer.Complete(ctx, llm.Prompt(c.model, aiTemperature, aiPrompt(model.TruncateRunes(string(summary), aiModelSummaryChars))))
	if err != nil {
		c.logger.Warn("model check: ai validation failed", "error", err)
		return nil
	}

	var issues []Issue
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &issues); err != nil {
		c.logger.Warn("model check: unparseable ai reply", "error", err)
		return nil
	}

	out := issues[:0]
	for _, is := range issues {
		if strings.TrimSpace(is.Message) == "" {
			continue
		}
		if is.Severity == "" {
			is.Severity = SeverityWarning
		}
		if is.Type == "" {
			is.Type = TypeInconsistent
		}
		out = append(out, is)
	}
	return out
}

func aiPrompt(modelSummary string) string {
	return fmt.Sprintf(`You are a financial modeling expert. Analyze this DCF model data and identify any logical errors, inconsistencies, or issues:

%s

Look for:
1. Inconsistent growth rates
2. Unrealistic assumptions (e.g., WACC > 30%%, negative margins)
3. Missing key components
4. Calculation inconsistencies

Return a JSON array of errors with format:
{"sheet": "sheetName", "cell": "A1", "type": "inconsistent", "severity": "warning", "message": "description"}

Return ONLY the JSON array, no additional text.`, modelSummary)
}
