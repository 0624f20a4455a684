package strategies

// Performance accumulates realized results across closed trades for
// the lifetime of the run. Mutated only from the close-notification
// path; reset only by restart.
type Performance struct {
	TotalPips       float64
	TotalProfitLoss float64
}

func (p *Performance) Add(pips, profitLoss float64) {
	p.TotalPips += pips
	p.TotalProfitLoss += profitLoss
}
