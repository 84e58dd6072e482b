package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	OrdersPlaced      Counter
	OrdersFailed      Counter
	QuotesReplaced    Counter
	HedgesPlaced      Counter
	KillSwitchEngaged Counter
	TicksSkipped      Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		OrdersPlaced:      n,
		OrdersFailed:      n,
		QuotesReplaced:    n,
		HedgesPlaced:      n,
		KillSwitchEngaged: n,
		TicksSkipped:      n,
	}
}
