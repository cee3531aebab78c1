package schema

import "strings"

func validContent() map[string]any {
	return map[string]any{
		"introduction": strings.Repeat("Goroutines let Go programs do many things at once. ", 3),
		"core_concepts": []any{
			map[string]any{"title": "Goroutines", "explanation": "Lightweight threads."},
			map[string]any{"title": "Channels", "explanation": "Typed pipes."},
		},
		"guided_walkthrough": []any{"Start", "Spawn", "Wait"},
		"practical_examples": []any{
			map[string]any{"description": "Fan out"},
			map[string]any{"description": "Worker pool"},
		},
	}
}

func validLesson() map[string]any {
	return map[string]any{
		"lesson_title":      "Intro to goroutines",
		"bloom_level":       "Understand",
		"learning_outcomes": []any{"Explain goroutines"},
		"content":           validContent(),
		"quiz": []any{
			map[string]any{"question": "Q?", "options": []any{"a", "b"}, "correct_answer": "a"},
			"not an object",
		},
	}
}

func validCourse() map[string]any {
	return map[string]any{
		"title":    "Go Concurrency",
		"overview": "Learn concurrency in Go.",
		"modules": []any{
			map[string]any{
				"module_title": "Basics",
				"lessons":      []any{validLesson()},
			},
		},
	}
}
