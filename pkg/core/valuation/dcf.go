package valuation

import "math"

// OpexInput holds the discounting terms for a recurring cost.
type OpexInput struct {
	ReturnPeriod int     // years
	DiscountRate float64 // percent
	WACC         float64 // percent
}

// DiscountFactor is 1/(1+rate)^years with rate as a percentage.
func DiscountFactor(rate float64, years int) float64 {
	return 1 / math.Pow(1+rate/100, float64(years))
}

// PresentValue sums an annual cost over the return period, the first year
// undiscounted:
//
//	sum(opex / (1+rate)^i) for i in 0..period-1
func PresentValue(opex float64, in OpexInput) float64 {
	var pv float64
	for i := 0; i < in.ReturnPeriod; i++ {
		pv += opex * DiscountFactor(in.DiscountRate, i)
	}
	return pv
}

// DiscountOpex rounds the present value of an annual opex line to whole
// currency units, then applies the WACC markup.
func DiscountOpex(opex float64, in OpexInput) float64 {
	return ApplyWACC(math.RoundToEven(PresentValue(opex, in)), in.WACC)
}

// DiscountARPU brings a monthly ARPU for year back to baseYear values.
// Years before baseYear are compounded forward.
func DiscountARPU(arpu, rate float64, year, baseYear int) float64 {
	return arpu / math.Pow(1+rate/100, float64(year-baseYear))
}
