package valuation

// WACCMarkup is the multiplier applied to every cost line to reflect the
// operator's cost of capital. wacc is a percentage (15 -> 1.15).
func WACCMarkup(wacc float64) float64 {
	return 1 + wacc/100
}

// ApplyWACC marks up a capex line by the weighted average cost of capital.
func ApplyWACC(cost, wacc float64) float64 {
	return cost * WACCMarkup(wacc)
}
