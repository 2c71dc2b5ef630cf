package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dcfassist/internal/action"
	"dcfassist/internal/embedding"
	"dcfassist/internal/llm"
	"dcfassist/internal/model"
)

const (
	chatTemperature        = 0.7
	sensitivityTemperature = 0.5
	sensitivityContext     = 2000

	// SkippedEditsHeading 回复中列出被拒绝动作的标题
	SkippedEditsHeading = "Some requested edits were skipped:"
)

// 回复中的第一个 ```json [...] ``` 代码块
var actionBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

// ChatRequest 对话请求
type ChatRequest struct {
	Message   string
	ModelData model.ModelData
	History   []llm.Message
	Excerpts  []string
}

// ChatResult 对话结果；Actions 只包含校验通过的动作
type ChatResult struct {
	Response     string          `json:"response"`
	Actions      []action.Action `json:"actions"`
	ActionErrors []string        `json:"actionErrors"`
}

// Chat 基于模型上下文回答问题，并校验回复中提出的表格编辑动作
func (a *Assistant) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	if a.completer == nil {
		return ChatResult{}, llm.ErrNotConfigured
	}

	prompt := chatPrompt(req)
	reply, err := a.completer.Complete(ctx, llm.Prompt(a.cfg.ChatModel, chatTemperature, prompt))
	if err != nil {
		return ChatResult{}, fmt.Errorf("failed to generate chat response: %w", err)
	}
	return a.parseReply(reply), nil
}

// parseReply 取出动作代码块并交给校验器分拣
func (a *Assistant) parseReply(reply string) ChatResult {
	res := ChatResult{Actions: []action.Action{}, ActionErrors: []string{}}

	loc := actionBlockPattern.FindStringSubmatchIndex(reply)
	if loc == nil {
		res.Response = strings.TrimSpace(reply)
		return res
	}

	text := strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
	actions, err := action.DecodeBatch([]byte(reply[loc[2]:loc[3]]))
	if err != nil {
		a.logger.Warn("chat reply contains unparseable actions", "error", err)
		res.ActionErrors = append(res.ActionErrors, "Proposed edits could not be parsed")
		res.Response = appendSkipped(text, res.ActionErrors)
		return res
	}

	outcome := a.validator.Validate(actions)
	res.Actions = append(res.Actions, outcome.Validated...)
	res.ActionErrors = append(res.ActionErrors, outcome.Errors()...)
	res.Response = appendSkipped(text, res.ActionErrors)

	a.logger.Info("chat actions validated", "validated", len(outcome.Validated), "rejected", len(outcome.Rejections))
	return res
}

func appendSkipped(text string, errs []string) string {
	if len(errs) == 0 {
		return text
	}
	var sb strings.Builder
	sb.WriteString(text)
	if text != "" {
		sb.WriteString("\n\n")
	}
	sb.WriteString(SkippedEditsHeading)
	for _, e := range errs {
		sb.WriteString("\n- ")
		sb.WriteString(e)
	}
	return sb.String()
}

// RelevantExcerpts 检索与问题最相关的文档片段；失败时返回空
func (a *Assistant) RelevantExcerpts(ctx context.Context, ix *embedding.Index, query string) []string {
	if ix.Len() == 0 || a.embedder == nil {
		return nil
	}
	matches, err := ix.Search(ctx, a.embedder, query, a.cfg.TopK)
	if err != nil {
		a.logger.Warn("document search failed", "error", err)
		return nil
	}
	excerpts := make([]string, 0, len(matches))
	for _, m := range matches {
		excerpts = append(excerpts, m.Chunk)
	}
	return excerpts
}

// Sensitivity 解释某个变量在给定区间内变化对估值的影响
func (a *Assistant) Sensitivity(ctx context.Context, data model.ModelData, variable, rangeValues string) (string, error) {
	if a.completer == nil {
		return "", llm.ErrNotConfigured
	}

	modelContext := model.BuildContext(data, model.DefaultContextRows, sensitivityContext)
	prompt := fmt.Sprintf(`Given this DCF model, explain how changing %s across the range %s
would impact the enterprise value and equity value. Provide specific directional and magnitude insights.

Model context:
%s`, variable, rangeValues, modelContext)

	reply, err := a.completer.Complete(ctx, llm.Prompt(a.cfg.ChatModel, sensitivityTemperature, prompt))
	if err != nil {
		return "", fmt.Errorf("failed to run sensitivity analysis: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func chatPrompt(req ChatRequest) string {
	var history strings.Builder
	for i, h := range req.History {
		if i > 0 {
			history.WriteString("\n")
		}
		speaker := "Assistant"
		if h.Role == "user" {
			speaker = "User"
		}
		history.WriteString(speaker)
		history.WriteString(": ")
		history.WriteString(h.Content)
	}

	var excerpts strings.Builder
	if len(req.Excerpts) > 0 {
		excerpts.WriteString("\nRelevant Document Excerpts:\n")
		for i, e := range req.Excerpts {
			fmt.Fprintf(&excerpts, "[%d] %s\n", i+1, e)
		}
	}

	return fmt.Sprintf(`You are a financial analysis assistant helping analyze a DCF model.

Current DCF Model Summary:
%s
%s
Previous Conversation:
%s

User Question: %s

Provide a clear, insightful answer. If the question involves "what if" scenarios or sensitivity analysis,
explain how changes would flow through the model. Be specific and reference actual values from the model when relevant.

If the user asks you to change the workbook, append the edits as a JSON array inside a single `+"```json"+` code block.
Supported actions:
- {"type":"setCellValue","sheet":"...","cell":"B2","value":...}
- {"type":"setFormula","sheet":"...","cell":"B2","formula":"=..."}
- {"type":"setRangeValues","sheet":"...","range":"A1:C2","values":[[...],[...]]}
- {"type":"setRangeFormulas","sheet":"...","range":"A1:C2","formulas":[["=..."],["=..."]]}
- {"type":"clearRange","sheet":"...","range":"A1:C2"}
- {"type":"formatCell","sheet":"...","cell":"B2","format":{...}}
The values or formulas array must have exactly as many rows and columns as the range.`,
		model.BuildContext(req.ModelData, model.DefaultContextRows, model.DefaultContextChars),
		excerpts.String(),
		history.String(),
		req.Message,
	)
}
