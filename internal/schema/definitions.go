package schema

import "github.com/abhisek/coursegen/internal/llm"

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

func object(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

var questionDefinition = object(map[string]any{
	"question":       str("The question text"),
	"options":        strList("Four distinct answer options"),
	"correct_answer": str("Exact text of the correct option"),
	"difficulty": map[string]any{
		"type": "string",
		"enum": []any{"easy", "medium", "hard"},
	},
	"explanation": str("Why the correct answer is right"),
}, "question", "options", "correct_answer", "difficulty", "explanation")

var lessonContentDefinition = object(map[string]any{
	"introduction":    str("Engaging introduction of at least 100 characters"),
	"lesson_overview": strList("What the lesson covers"),
	"core_concepts": map[string]any{
		"type": "array",
		"items": object(map[string]any{
			"title":        str("Concept title"),
			"explanation":  str("Detailed explanation"),
			"code_example": str("Short code sample, or an empty string"),
		}, "title", "explanation", "code_example"),
	},
	"guided_walkthrough": strList("At least three ordered steps"),
	"practical_examples": map[string]any{
		"type": "array",
		"items": object(map[string]any{
			"description": str("What the example shows"),
			"code":        str("Example code, or an empty string"),
			"explanation": str("Walkthrough of the example"),
		}, "description", "code", "explanation"),
	},
	"common_pitfalls":  strList("Mistakes learners make"),
	"mental_model":     str("An analogy of at least 50 characters"),
	"summary":          str("Recap of the lesson"),
	"further_thinking": strList("Reflection prompts"),
}, "introduction", "lesson_overview", "core_concepts", "guided_walkthrough",
	"practical_examples", "common_pitfalls", "mental_model", "summary", "further_thinking")

var lessonDefinition = object(map[string]any{
	"lesson_title": str("Lesson title"),
	"bloom_level": map[string]any{
		"type": "string",
		"enum": []any{"Remember", "Understand", "Apply", "Analyze", "Evaluate", "Create"},
	},
	"learning_outcomes":          strList("Measurable outcomes"),
	"estimated_duration_minutes": map[string]any{"type": "integer"},
	"content":                    lessonContentDefinition,
	"quiz":                       map[string]any{"type": "array", "items": questionDefinition},
}, "lesson_title", "bloom_level", "learning_outcomes", "estimated_duration_minutes", "content", "quiz")

// CourseSchema constrains course generation on providers with native
// structured output.
var CourseSchema = &llm.Schema{
	Name:        "course",
	Description: "A multi-module course with structured lessons and quizzes",
	Definition: object(map[string]any{
		"title":    str("Course title"),
		"overview": str("Course overview"),
		"modules": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"module_title":       str("Module title"),
				"module_description": str("Module description"),
				"lessons":            map[string]any{"type": "array", "items": lessonDefinition},
			}, "module_title", "module_description", "lessons"),
		},
	}, "title", "overview", "modules"),
}

// QuizSchema constrains quiz generation. Structured output needs an object
// at the top level, so questions are wrapped.
var QuizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "A list of multiple-choice quiz questions",
	Definition: object(map[string]any{
		"questions": map[string]any{"type": "array", "items": questionDefinition},
	}, "questions"),
}
