package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"dcfassist/internal/llm"
	"dcfassist/internal/model"
)

const (
	generateInputChars  = 8000
	generateTemperature = 0.3
	minAssumptionRows   = 5
	unknownCompanyName  = "Unknown Company"
	researchTemperature = 0.3
)

var companyNamePattern = regexp.MustCompile(`(?i)(?:Company|Corporation|Inc|Ltd):\s*([^\n]+)`)

// GenerateModel 根据文档文本生成 DCF 模型；任何失败都返回兜底模板
func (a *Assistant) GenerateModel(ctx context.Context, text string) model.ModelData {
	if a.completer == nil {
		return model.FallbackTemplate()
	}

	prompt := generatePrompt(model.TruncateRunes(text, generateInputChars))
	reply, err := a.completer.Complete(ctx, llm.Prompt(a.cfg.ChatModel, generateTemperature, prompt))
	if err != nil {
		a.logger.Warn("model generation failed, using fallback template", "error", err)
		return model.FallbackTemplate()
	}

	data, err := model.ParseGenerated([]byte(llm.ExtractJSON(reply)))
	if err != nil {
		a.logger.Warn("model generation reply unparseable, using fallback template", "error", err)
		return model.FallbackTemplate()
	}

	if len(data[model.SheetAssumptions].Values) < minAssumptionRows {
		a.enhanceWithResearch(ctx, data, text)
	}
	return data
}

type research struct {
	RevenueGrowth    any `json:"revenueGrowth"`
	EbitdaMargin     any `json:"ebitdaMargin"`
	WACC             any `json:"wacc"`
	TerminalMultiple any `json:"terminalMultiple"`
}

// enhanceWithResearch 假设过少时让模型补充行业常见参数；失败时保持原样
func (a *Assistant) enhanceWithResearch(ctx context.Context, data model.ModelData, text string) {
	company := CompanyName(text)
	a.logger.Info("researching additional assumptions", "company", company)

	reply, err := a.completer.Complete(ctx, llm.Prompt(a.cfg.ChatModel, researchTemperature, researchPrompt(company)))
	if err != nil {
		a.logger.Warn("research enhancement failed", "error", err)
		return
	}

	var r research
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &r); err != nil {
		a.logger.Warn("research enhancement reply unparseable", "error", err)
		return
	}

	rows := model.DefaultResearchAssumptions(r.RevenueGrowth, r.EbitdaMargin, r.WACC, r.TerminalMultiple)
	data[model.SheetAssumptions] = model.Sheet{Values: rows}
}

// CompanyName 从文档中提取 "Company: xxx" 形式的公司名
func CompanyName(text string) string {
	m := companyNamePattern.FindStringSubmatch(text)
	if m == nil {
		return unknownCompanyName
	}
	if name := strings.TrimSpace(m[1]); name != "" {
		return name
	}
	return unknownCompanyName
}

func generatePrompt(text string) string {
	return fmt.Sprintf(`You are a financial modeling expert. Given the following company information extracted from a PDF,
create a complete DCF (Discounted Cash Flow) model structure.

Extract or reasonably estimate:
1. Historical financials (revenue, EBITDA, CAPEX, working capital changes)
2. Growth assumptions (revenue growth rates, margin assumptions)
3. WACC components (cost of equity, cost of debt, capital structure)
4. Terminal value assumptions

If specific data is missing, make reasonable assumptions based on:
- Industry standards for similar companies
- Context clues from the document
- Conservative financial modeling practices

Return the data as JSON with three sections:
- assumptions: 2D array for Assumptions sheet (labels in col A, values in col B)
- financials: 2D array for Financials sheet (headers in row 1, data below)
- dcfCalculations: 2D array for DCF Calculation sheet (with Excel formulas using = prefix)

Company Information:
%s

Return ONLY valid JSON, no additional text.`, text)
}

func researchPrompt(company string) string {
	return fmt.Sprintf(`Based on general knowledge, provide typical financial metrics for %s or similar companies in the same industry:

- Typical revenue growth rate
- Industry average EBITDA margin
- Typical WACC (discount rate)
- Industry P/E or EV/EBITDA multiples

Return as JSON with keys: revenueGrowth, ebitdaMargin, wacc, terminalMultiple`, company)
}
