package market

import "github.com/shopspring/decimal"

// BookEntry is a single price level of an order book side.
type BookEntry struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// OrderBookView exposes read-only order book snapshots per pair. Entries
// are produced fresh on every call and are not retained by consumers.
type OrderBookView interface {
	BidEntries(pair Pair) []BookEntry
	AskEntries(pair Pair) []BookEntry
}

// BestBid returns the highest-priced bid entry.
func BestBid(entries []BookEntry) (BookEntry, bool) {
	if len(entries) == 0 {
		return BookEntry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Price.GreaterThan(best.Price) {
			best = e
		}
	}
	return best, true
}

// BestAsk returns the lowest-priced ask entry.
func BestAsk(entries []BookEntry) (BookEntry, bool) {
	if len(entries) == 0 {
		return BookEntry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Price.LessThan(best.Price) {
			best = e
		}
	}
	return best, true
}

// RestingVolume sums the resting amounts across all levels of one side.
func RestingVolume(entries []BookEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
