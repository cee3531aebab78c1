package mastery

// Transition records an adaptive change on a lesson for logging.
type Transition struct {
	LessonID string
	Kind     string // "difficulty" or "bloom"
	From     string
	To       string
	Score    float64
}

// Changed reports whether the transition moved the learner.
func (t Transition) Changed() bool { return t.From != t.To }

// Outcome is the result of applying both adaptive rules to one attempt.
type Outcome struct {
	Passed     bool
	Difficulty Difficulty
	Bloom      BloomLevel
}

// Step runs both rules for a graded attempt.
func Step(difficulty Difficulty, bloom BloomLevel, score float64) Outcome {
	passed := Passed(score)
	return Outcome{
		Passed:     passed,
		Difficulty: NextDifficulty(difficulty, score),
		Bloom:      NextBloomLevel(bloom, score, passed),
	}
}

// Transitions lists the difficulty and Bloom moves between the given
// starting point and o.
func (o Outcome) Transitions(lessonID string, difficulty Difficulty, bloom BloomLevel, score float64) []Transition {
	return []Transition{
		{LessonID: lessonID, Kind: "difficulty", From: string(difficulty), To: string(o.Difficulty), Score: score},
		{LessonID: lessonID, Kind: "bloom", From: string(bloom), To: string(o.Bloom), Score: score},
	}
}
