package schema

import "unicode/utf8"

const (
	minIntroductionChars = 100
	minMentalModelChars  = 50
	minCoreConcepts      = 2
	minWalkthroughSteps  = 3
	minPracticalExamples = 2
)

var lessonRequired = []string{"introduction", "core_concepts", "guided_walkthrough", "practical_examples"}

// ValidateLessonContent checks the structured content document of a lesson.
// Optional sections are not checked here; the course builder fills them in.
func ValidateLessonContent(v any) *ValidationError {
	if _, isString := v.(string); isString {
		return fail(LessonValidator, "Lesson content must be a structured object, not a string")
	}
	content, ok := asObject(v)
	if !ok {
		return fail(LessonValidator, "Lesson content must be an object, got %s", typeName(v))
	}

	for _, f := range lessonRequired {
		if _, ok := content[f]; !ok {
			return fail(LessonValidator, "Lesson content missing required field: %s", f)
		}
	}

	if !hasAtLeast(content["core_concepts"], minCoreConcepts) {
		return fail(LessonValidator, "core_concepts must have at least %d sections", minCoreConcepts)
	}
	if !hasAtLeast(content["guided_walkthrough"], minWalkthroughSteps) {
		return fail(LessonValidator, "guided_walkthrough must have at least %d steps", minWalkthroughSteps)
	}
	if !hasAtLeast(content["practical_examples"], minPracticalExamples) {
		return fail(LessonValidator, "practical_examples must have at least %d examples", minPracticalExamples)
	}

	intro, _ := content["introduction"].(string)
	if utf8.RuneCountInString(intro) < minIntroductionChars {
		return fail(LessonValidator, "introduction is too short (must be at least %d characters)", minIntroductionChars)
	}

	if mental, _ := content["mental_model"].(string); mental != "" && utf8.RuneCountInString(mental) < minMentalModelChars {
		return fail(LessonValidator, "mental_model is too short (must be at least %d characters)", minMentalModelChars)
	}

	return nil
}

// ValidateObject accepts any JSON object. Regenerated lessons and modules
// are free-form beyond that.
func ValidateObject(v any) (map[string]any, *ValidationError) {
	m, ok := asObject(v)
	if !ok {
		return nil, fail(ObjectValidator, "Regenerated content must be a JSON object, got %s", typeName(v))
	}
	return m, nil
}

func hasAtLeast(v any, n int) bool {
	l, ok := asList(v)
	return ok && len(l) >= n
}
