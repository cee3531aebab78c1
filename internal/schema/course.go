package schema

import (
	"github.com/abhisek/coursegen/internal/mastery"
)

// CourseDraft is a course payload that passed validation. Field values are
// taken as generated; defaults are applied later by the course builder.
type CourseDraft struct {
	Title    string
	Overview string
	Modules  []ModuleDraft
}

// ModuleDraft is one validated module.
type ModuleDraft struct {
	ID          string
	Title       string
	Description string
	Lessons     []LessonDraft
}

// LessonDraft is one validated lesson. Content is the raw content document
// and Quiz the raw question objects.
type LessonDraft struct {
	ID               string
	Title            string
	Bloom            mastery.BloomLevel
	LearningOutcomes []string
	Content          map[string]any
	Quiz             []map[string]any
	EstimatedMinutes int
}

var lessonFields = []string{"lesson_title", "bloom_level", "learning_outcomes", "content"}

// ValidateCourse checks a parsed course payload. Bloom levels must use the
// canonical capitalized labels and every lesson's content must pass
// ValidateLessonContent.
func ValidateCourse(v any) (*CourseDraft, *ValidationError) {
	data, ok := asObject(v)
	if !ok {
		return nil, fail(CourseValidator, "Course must be an object, got %s", typeName(v))
	}

	for _, f := range []string{"title", "overview", "modules"} {
		if _, ok := data[f]; !ok {
			return nil, fail(CourseValidator, "Missing required field: %s", f)
		}
	}

	modules, ok := asList(data["modules"])
	if !ok || len(modules) == 0 {
		return nil, fail(CourseValidator, "Modules must be a non-empty list")
	}

	draft := &CourseDraft{
		Title:    text(data["title"]),
		Overview: text(data["overview"]),
		Modules:  make([]ModuleDraft, 0, len(modules)),
	}

	for i, mv := range modules {
		mod, _ := asObject(mv)
		if _, ok := mod["module_title"]; !ok {
			return nil, fail(CourseValidator, "Module %d missing module_title", i)
		}
		lessons, ok := asList(mod["lessons"])
		if !ok {
			return nil, fail(CourseValidator, "Module %d missing lessons array", i)
		}

		md := ModuleDraft{
			ID:          Text(mod, "module_id", ""),
			Title:       text(mod["module_title"]),
			Description: Text(mod, "module_description", ""),
			Lessons:     make([]LessonDraft, 0, len(lessons)),
		}

		for j, lv := range lessons {
			lesson, _ := asObject(lv)
			for _, f := range lessonFields {
				if _, ok := lesson[f]; !ok {
					return nil, fail(CourseValidator, "Module %d, Lesson %d missing %s", i, j, f)
				}
			}

			label, _ := lesson["bloom_level"].(string)
			bloom, err := mastery.ParseBloomLevelStrict(label)
			if err != nil {
				return nil, fail(CourseValidator, "Invalid bloom_level: %v", lesson["bloom_level"])
			}

			if verr := ValidateLessonContent(lesson["content"]); verr != nil {
				return nil, fail(CourseValidator, "Module %d, Lesson %d: %s", i, j, verr.Message)
			}

			md.Lessons = append(md.Lessons, LessonDraft{
				ID:               Text(lesson, "lesson_id", ""),
				Title:            text(lesson["lesson_title"]),
				Bloom:            bloom,
				LearningOutcomes: Strings(lesson, "learning_outcomes", nil),
				Content:          lesson["content"].(map[string]any),
				Quiz:             objects(lesson["quiz"]),
				EstimatedMinutes: Int(lesson, "estimated_duration_minutes", 0),
			})
		}
		draft.Modules = append(draft.Modules, md)
	}

	return draft, nil
}

// objects keeps the object elements of a list.
func objects(v any) []map[string]any {
	l, _ := asList(v)
	var out []map[string]any
	for _, item := range l {
		if m, ok := asObject(item); ok {
			out = append(out, m)
		}
	}
	return out
}
