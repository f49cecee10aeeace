package pipeline

// Cost model. These are rough price-list estimates for operator dashboards,
// not billed totals. Script generation is a flat per-run figure; speech and
// transcription scale with measured usage.
const (
	scriptCostPerRun     = 0.001
	speechCostPerChar    = 0.000015
	transcribeCostPerSec = 0.0001
)

func scriptCost() float64 {
	return scriptCostPerRun
}

func speechCost(chars int) float64 {
	if chars < 0 {
		chars = 0
	}
	return float64(chars) * speechCostPerChar
}

func transcriptionCost(seconds float64) float64 {
	if seconds < 0 {
		seconds = 0
	}
	return seconds * transcribeCostPerSec
}
