package quant

// FairValue estimates a Gordon dividend-discount fair value:
// dividend / max(requiredReturn - growth, floor).
//
// The floor prevents near-zero or negative denominators from producing
// runaway values when beta is very low or growth approaches the required
// return. Without a positive dividend signal there is nothing to discount
// and the second return is false — a value is never fabricated from a zero
// dividend.
func FairValue(dividendRate, requiredReturn, growth, floor float64) (float64, bool) {
	if dividendRate <= 0 {
		return 0, false
	}

	denom := requiredReturn - growth
	if denom < floor {
		denom = floor
	}

	return dividendRate / denom, true
}
