package mastery

// Level is the learner-facing mastery summary for a lesson.
type Level struct {
	Level       string  `json:"level"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Score       float64 `json:"score"`
}

// LevelFor summarizes a lesson from its score and attempt count.
func LevelFor(score float64, attempts int) Level {
	switch {
	case attempts == 0:
		return Level{"Not Started", "Take the quiz to assess your knowledge", "gray", 0}
	case score >= MasteryThreshold:
		return Level{"Mastered", "Excellent! You've mastered this content", "emerald", score}
	case score >= PassThreshold:
		return Level{"Proficient", "Good understanding, keep it up!", "blue", score}
	case score >= StrugglingThreshold:
		return Level{"Developing", "Making progress, review the material", "amber", score}
	default:
		return Level{"Needs Practice", "Review the lesson and try again", "rose", score}
	}
}

var bloomDescriptions = map[BloomLevel]string{
	Remember:   "Recall facts and basic concepts",
	Understand: "Explain ideas and concepts",
	Apply:      "Use information in new situations",
	Analyze:    "Draw connections among ideas",
	Evaluate:   "Justify decisions and actions",
	Create:     "Produce new or original work",
}

// Description is a one-line explanation of the level.
func (b BloomLevel) Description() string {
	if d, ok := bloomDescriptions[b]; ok {
		return d
	}
	return ""
}

var difficultyDescriptions = map[Difficulty]string{
	Easy:   "Foundational questions to build confidence",
	Medium: "Balanced questions testing core understanding",
	Hard:   "Challenging questions requiring deep knowledge",
}

func (d Difficulty) Description() string {
	if s, ok := difficultyDescriptions[d]; ok {
		return s
	}
	return ""
}
