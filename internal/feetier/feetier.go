package feetier

// Table maps discount-token balances to fee tiers. PrimaryThresholds is
// ascending; holding at least PrimaryThresholds[i] of the primary token
// (raw amount, mint decimals included) yields tier i+1. Holding at least
// MegaThreshold of the mega token yields MegaTier outright.
type Table struct {
	PrimaryThresholds []uint64
	MegaThreshold     uint64
	MegaTier          int
}

// DefaultTable is the SRM/MSRM schedule: SRM carries 6 decimals, so
// 100 whole SRM is 100_000_000 raw. One whole MSRM (0 decimals) maps to
// the top tier.
func DefaultTable() Table {
	return Table{
		PrimaryThresholds: []uint64{
			100_000_000,       // 100 SRM
			1_000_000_000,     // 1,000 SRM
			10_000_000_000,    // 10,000 SRM
			100_000_000_000,   // 100,000 SRM
			1_000_000_000_000, // 1,000,000 SRM
		},
		MegaThreshold: 1,
		MegaTier:      6,
	}
}

// Resolve maps the two balances to a fee tier. The mega balance is
// evaluated first: any holding at or above the mega threshold takes the
// mega tier regardless of the primary balance. Otherwise the highest
// primary threshold met decides. Thresholds are closed lower bounds, so
// a balance exactly at a threshold takes the higher tier. Monotone
// non-decreasing in both arguments; zero balances resolve to tier 0.
func (t Table) Resolve(primary, mega uint64) int {
	if t.MegaThreshold > 0 && mega >= t.MegaThreshold {
		return t.MegaTier
	}

	tier := 0
	for i, threshold := range t.PrimaryThresholds {
		if primary < threshold {
			break
		}
		tier = i + 1
	}

	return tier
}

// Resolve applies the default schedule.
func Resolve(primary, mega uint64) int {
	return DefaultTable().Resolve(primary, mega)
}
