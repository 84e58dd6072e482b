package market

// StatusSource reports venue availability. Ready means the venue has
// delivered an initial snapshot and accepts orders; Connected means the
// data link is currently live. A venue can be ready but momentarily
// disconnected.
type StatusSource interface {
	Ready(market string) bool
	Connected(market string) bool
}
