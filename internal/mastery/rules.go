package mastery

// Score thresholds, as percentages.
const (
	PassThreshold       = 70.0
	MasteryThreshold    = 85.0
	StrugglingThreshold = 50.0
)

// Passed reports whether a score clears the pass threshold.
func Passed(score float64) bool {
	return score >= PassThreshold
}

// NextDifficulty promotes one tier at or above the mastery threshold and
// demotes one tier below the struggling threshold.
func NextDifficulty(cur Difficulty, score float64) Difficulty {
	switch {
	case score >= MasteryThreshold:
		return cur.Next()
	case score < StrugglingThreshold:
		return cur.Prev()
	default:
		return cur
	}
}

// NextBloomLevel advances only on a passing attempt at mastery level and
// regresses only on a failing attempt below the struggling threshold.
// Passing without mastery holds the level.
func NextBloomLevel(cur BloomLevel, score float64, passed bool) BloomLevel {
	switch {
	case passed && score >= MasteryThreshold:
		return cur.Next()
	case !passed && score < StrugglingThreshold:
		return cur.Prev()
	default:
		return cur
	}
}
