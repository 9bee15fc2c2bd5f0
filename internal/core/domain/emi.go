package domain

import "math"

// CalculateEMI считает ежемесячный платеж по аннуитетному кредиту.
// annualRatePercent - годовая ставка в процентах, years - срок в годах.
// Результат округлен до целых единиц валюты. Вырожденные входные данные
// (в том числе срок короче одного месяца) дают 0.
func CalculateEMI(principal, annualRatePercent, years float64) float64 {
	if !isFinite(principal) || !isFinite(annualRatePercent) || !isFinite(years) {
		return 0
	}
	if principal <= 0 || annualRatePercent < 0 {
		return 0
	}
	n := years * 12
	if n < 1 {
		return 0
	}

	i := annualRatePercent / 100 / 12

	if i == 0 {
		return math.Round(principal / n)
	}

	growth := math.Pow(1+i, n)
	emi := principal * i * growth / (growth - 1)
	return math.Round(emi)
}

// EMIBreakdown - платеж плюс итоговые суммы для калькулятора на карточке объекта
type EMIBreakdown struct {
	MonthlyPayment float64
	Months         int
	TotalPayment   float64
	TotalInterest  float64
}

func CalculateEMIBreakdown(principal, annualRatePercent, years float64) EMIBreakdown {
	emi := CalculateEMI(principal, annualRatePercent, years)
	if emi == 0 {
		return EMIBreakdown{}
	}
	// итоги считаются от того же n, что и платеж
	n := years * 12
	total := math.Round(emi * n)
	return EMIBreakdown{
		MonthlyPayment: emi,
		Months:         int(math.Round(n)),
		TotalPayment:   total,
		TotalInterest:  math.Max(0, total-principal),
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
