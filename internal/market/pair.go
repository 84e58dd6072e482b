package market

import "fmt"

// Pair identifies a trading pair on a specific venue.
type Pair struct {
	Market string
	Base   string
	Quote  string
}

// AssetKey identifies the traded assets without the venue. Primary and
// mirrored pairs are cross-referenced by this key.
func (p Pair) AssetKey() string {
	return p.Base + "/" + p.Quote
}

func (p Pair) String() string {
	return p.Market + ":" + p.Base + "-" + p.Quote
}

type pairMapping struct {
	primary  Pair
	mirrored Pair
}

// PairIndex maps each (base, quote) asset key to its primary and mirrored
// pair. Built once at construction; a mirrored pair without exactly one
// primary counterpart is a configuration error.
type PairIndex struct {
	byAsset  map[string]pairMapping
	mirrored []Pair
	markets  []string
	all      []Pair
}

func NewPairIndex(primary, mirrored []Pair) (*PairIndex, error) {
	if len(primary) == 0 || len(mirrored) == 0 {
		return nil, fmt.Errorf("primary and mirrored pair lists must be non-empty")
	}
	if len(primary) != len(mirrored) {
		return nil, fmt.Errorf("pair count mismatch: %d primary, %d mirrored", len(primary), len(mirrored))
	}
	primaries := make(map[string]Pair, len(primary))
	for _, p := range primary {
		if _, ok := primaries[p.AssetKey()]; ok {
			return nil, fmt.Errorf("duplicate primary pair for %s", p.AssetKey())
		}
		primaries[p.AssetKey()] = p
	}
	idx := &PairIndex{
		byAsset:  make(map[string]pairMapping, len(mirrored)),
		mirrored: append([]Pair(nil), mirrored...),
	}
	for _, m := range mirrored {
		key := m.AssetKey()
		if _, ok := idx.byAsset[key]; ok {
			return nil, fmt.Errorf("duplicate mirrored pair for %s", key)
		}
		p, ok := primaries[key]
		if !ok {
			return nil, fmt.Errorf("no primary pair for mirrored %s", m)
		}
		idx.byAsset[key] = pairMapping{primary: p, mirrored: m}
		idx.all = append(idx.all, p, m)
	}
	seen := make(map[string]struct{})
	for _, p := range idx.all {
		if _, ok := seen[p.Market]; ok {
			continue
		}
		seen[p.Market] = struct{}{}
		idx.markets = append(idx.markets, p.Market)
	}
	return idx, nil
}

// PrimaryFor resolves the primary pair quoting the same assets as the
// given mirrored pair.
func (i *PairIndex) PrimaryFor(mirrored Pair) (Pair, bool) {
	m, ok := i.byAsset[mirrored.AssetKey()]
	return m.primary, ok
}

// MirroredFor resolves the mirrored counterpart of a primary pair. It
// reports false when the given pair is not a configured primary pair.
func (i *PairIndex) MirroredFor(primary Pair) (Pair, bool) {
	m, ok := i.byAsset[primary.AssetKey()]
	if !ok || m.primary != primary {
		return Pair{}, false
	}
	return m.mirrored, true
}

// Mirrored returns the mirrored pairs in configured order.
func (i *PairIndex) Mirrored() []Pair {
	return i.mirrored
}

// Pairs returns every configured pair, primary and mirrored.
func (i *PairIndex) Pairs() []Pair {
	return i.all
}

// Markets returns the distinct venue handles across all pairs.
func (i *PairIndex) Markets() []string {
	return i.markets
}
