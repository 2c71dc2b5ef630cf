package model

// FallbackTemplate 模型生成失败时使用的默认 DCF 模板
func FallbackTemplate() ModelData {
	assumptions := [][]any{
		{"Assumption", "Value"},
		{"Revenue Growth Rate (Y1-3)", "8%"},
		{"Revenue Growth Rate (Y4-5)", "5%"},
		{"EBITDA Margin", "22%"},
		{"Tax Rate", "25%"},
		{"CAPEX (% of Revenue)", "3%"},
		{"NWC Change (% of Rev)", "2%"},
		{"Cost of Equity", "12%"},
		{"Cost of Debt", "5%"},
		{"Debt/Equity Ratio", "30%"},
		{"WACC", "10.2%"},
		{"Terminal Growth Rate", "2.5%"},
	}

	financials := [][]any{
		{"Item", "Year 0", "Year 1", "Year 2", "Year 3", "Year 4", "Year 5"},
		{"Revenue", 1000.0, "=B2*1.08", "=C2*1.08", "=D2*1.08", "=E2*1.05", "=F2*1.05"},
		{"EBITDA", "=B2*0.22", "=C2*0.22", "=D2*0.22", "=E2*0.22", "=F2*0.22", "=G2*0.22"},
		{"D&A", 50.0, 55.0, 60.0, 65.0, 68.0, 71.0},
		{"EBIT", "=B3-B4", "=C3-C4", "=D3-D4", "=E3-E4", "=F3-F4", "=G3-G4"},
		{"Tax", "=B5*0.25", "=C5*0.25", "=D5*0.25", "=E5*0.25", "=F5*0.25", "=G5*0.25"},
		{"NOPAT", "=B5-B6", "=C5-C6", "=D5-D6", "=E5-E6", "=F5-F6", "=G5-G6"},
		{"+ D&A", "=B4", "=C4", "=D4", "=E4", "=F4", "=G4"},
		{"- CAPEX", "=B2*0.03", "=C2*0.03", "=D2*0.03", "=E2*0.03", "=F2*0.03", "=G2*0.03"},
		{"- NWC Change", "=B2*0.02", "=C2*0.02", "=D2*0.02", "=E2*0.02", "=F2*0.02", "=G2*0.02"},
		{"Free Cash Flow", "=B7+B8-B9-B10", "=C7+C8-C9-C10", "=D7+D8-D9-D10", "=E7+E8-E9-E10", "=F7+F8-F9-F10", "=G7+G8-G9-G10"},
	}

	dcf := [][]any{
		{"DCF Calculation", "Year 1", "Year 2", "Year 3", "Year 4", "Year 5"},
		{"Free Cash Flow", "=Financials!C11", "=Financials!D11", "=Financials!E11", "=Financials!F11", "=Financials!G11"},
		{"Discount Factor", "=1/(1+0.102)^1", "=1/(1+0.102)^2", "=1/(1+0.102)^3", "=1/(1+0.102)^4", "=1/(1+0.102)^5"},
		{"PV of FCF", "=B2*B3", "=C2*C3", "=D2*D3", "=E2*E3", "=F2*F3"},
		{"", "", "", "", "", ""},
		{"Sum of PV FCF", "=SUM(B4:F4)", "", "", "", ""},
		{"Terminal Value", "=Financials!G11*(1+0.025)/(0.102-0.025)", "", "", "", ""},
		{"PV of Terminal Value", "=B7*F3", "", "", "", ""},
		{"", "", "", "", "", ""},
		{"Enterprise Value", "=B6+B8", "", "", "", ""},
		{"Less: Net Debt", 200.0, "", "", "", ""},
		{"Equity Value", "=B10-B11", "", "", "", ""},
	}

	m := ModelData{}
	m.put(SheetAssumptions, assumptions)
	m.put(SheetFinancials, financials)
	m.put(SheetDCF, dcf)
	return m
}

// DefaultResearchAssumptions 补充调研失败或缺项时使用的假设行
func DefaultResearchAssumptions(revenueGrowth, ebitdaMargin, wacc, terminalMultiple any) [][]any {
	pick := func(v any, fallback string) any {
		if v == nil || v == "" {
			return fallback
		}
		return v
	}
	return [][]any{
		{"Assumption", "Value"},
		{"Revenue Growth Rate", pick(revenueGrowth, "5%")},
		{"EBITDA Margin", pick(ebitdaMargin, "20%")},
		{"WACC", pick(wacc, "10%")},
		{"Terminal Growth Rate", "2.5%"},
		{"Terminal Multiple", pick(terminalMultiple, "10x")},
	}
}
