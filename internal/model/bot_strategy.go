package model

// Autoplay strategy names
const (
	AutoplayStrategyRandom   = "random"
	AutoplayStrategyExplorer = "explorer"
)

// AutoplayStrategyDisplayName returns a human-readable label for a strategy
func AutoplayStrategyDisplayName(strategy string) string {
	switch strategy {
	case AutoplayStrategyRandom:
		return "Random walk"
	case AutoplayStrategyExplorer:
		return "Explorer"
	default:
		return strategy
	}
}

// ValidAutoplayStrategies returns all valid autoplay strategy names
func ValidAutoplayStrategies() []string {
	return []string{AutoplayStrategyRandom, AutoplayStrategyExplorer}
}
