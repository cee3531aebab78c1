// Package mastery holds the adaptive rules that move a learner between
// difficulty tiers and Bloom levels after each quiz attempt.
package mastery

import (
	"fmt"
	"strings"
)

// Difficulty is a quiz difficulty tier, ordered easy < medium < hard.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var difficulties = []Difficulty{Easy, Medium, Hard}

// Difficulties returns every tier in ascending order.
func Difficulties() []Difficulty {
	return append([]Difficulty(nil), difficulties...)
}

// Index returns the tier's position in the progression, or -1.
func (d Difficulty) Index() int {
	for i, v := range difficulties {
		if v == d {
			return i
		}
	}
	return -1
}

func (d Difficulty) Valid() bool { return d.Index() >= 0 }

// Next returns the next harder tier. Hard stays hard.
func (d Difficulty) Next() Difficulty {
	return step(difficulties, d.Index(), +1, d)
}

// Prev returns the next easier tier. Easy stays easy.
func (d Difficulty) Prev() Difficulty {
	return step(difficulties, d.Index(), -1, d)
}

// ParseDifficulty maps a case-insensitive label to a tier. Unknown labels
// fall back to Medium.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d
	}
	return Medium
}

// BloomLevel is a cognitive level in Bloom's taxonomy, ordered
// Remember < Understand < Apply < Analyze < Evaluate < Create.
type BloomLevel string

const (
	Remember   BloomLevel = "Remember"
	Understand BloomLevel = "Understand"
	Apply      BloomLevel = "Apply"
	Analyze    BloomLevel = "Analyze"
	Evaluate   BloomLevel = "Evaluate"
	Create     BloomLevel = "Create"
)

var bloomLevels = []BloomLevel{Remember, Understand, Apply, Analyze, Evaluate, Create}

// BloomLevels returns every level in ascending order.
func BloomLevels() []BloomLevel {
	return append([]BloomLevel(nil), bloomLevels...)
}

func (b BloomLevel) Index() int {
	for i, v := range bloomLevels {
		if v == b {
			return i
		}
	}
	return -1
}

func (b BloomLevel) Valid() bool { return b.Index() >= 0 }

// Next advances one level. Create stays Create.
func (b BloomLevel) Next() BloomLevel {
	return step(bloomLevels, b.Index(), +1, b)
}

// Prev regresses one level. Remember stays Remember.
func (b BloomLevel) Prev() BloomLevel {
	return step(bloomLevels, b.Index(), -1, b)
}

// ParseBloomLevel maps a case-insensitive label to a level. Unknown labels
// fall back to Remember.
func ParseBloomLevel(s string) BloomLevel {
	want := strings.TrimSpace(s)
	for _, b := range bloomLevels {
		if strings.EqualFold(string(b), want) {
			return b
		}
	}
	return Remember
}

// ParseBloomLevelStrict accepts only the exact canonical labels.
func ParseBloomLevelStrict(s string) (BloomLevel, error) {
	b := BloomLevel(s)
	if !b.Valid() {
		return "", fmt.Errorf("invalid bloom level %q", s)
	}
	return b, nil
}

// step moves i by delta within levels, saturating at both ends. Values not
// in levels are returned unchanged.
func step[T any](levels []T, i, delta int, cur T) T {
	if i < 0 {
		return cur
	}
	j := i + delta
	if j < 0 || j >= len(levels) {
		return cur
	}
	return levels[j]
}
