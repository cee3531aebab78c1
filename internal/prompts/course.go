package prompts

import (
	"strings"
	"text/template"
)

// CourseLayout is the module and lesson count requested for a duration.
type CourseLayout struct {
	Modules          int
	LessonsPerModule int
}

// LayoutFor sizes a course: roughly one module per two hours (2 to 6) and
// 2 to 3 lessons per module.
func LayoutFor(durationHours int) CourseLayout {
	modules := max(2, min(6, durationHours/2))
	return CourseLayout{
		Modules:          modules,
		LessonsPerModule: max(2, min(3, durationHours/modules)),
	}
}

type courseData struct {
	Topic           string
	Hours           int
	Difficulty      string
	DifficultyUpper string
	Guide           DifficultyGuide
	Layout          CourseLayout
	BloomLines      string
}

// Course renders the course generation prompt.
func (c *Catalog) Course(topic string, durationHours int, difficulty string) string {
	lines := make([]string, 0, len(c.Bloom))
	for _, g := range c.Bloom {
		lines = append(lines, "- "+g.Level+": "+g.TeachingApproach)
	}

	var b strings.Builder
	// The template is static and its data cannot fail to render.
	_ = courseTemplate.Execute(&b, courseData{
		Topic:           topic,
		Hours:           durationHours,
		Difficulty:      difficulty,
		DifficultyUpper: strings.ToUpper(difficulty),
		Guide:           c.DifficultyGuide(difficulty),
		Layout:          LayoutFor(durationHours),
		BloomLines:      strings.Join(lines, "\n"),
	})
	return b.String()
}

// Course renders the course generation prompt from the default catalog.
func Course(topic string, durationHours int, difficulty string) string {
	return Default().Course(topic, durationHours, difficulty)
}

var courseTemplate = template.Must(template.New("course").Parse(`Create a COMPREHENSIVE professional course about "{{.Topic}}".

=== CRITICAL INSTRUCTION ===
You are creating REAL COURSE CONTENT, not summaries.
Each lesson must be a COMPLETE LEARNING DOCUMENT that takes 20-40 minutes to read.
Write like you're creating content for The Odin Project or MDN tutorials.
=== DIFFICULTY LEVEL: {{.DifficultyUpper}} ===

TONE: {{.Guide.Tone}}

EXPLANATIONS: {{.Guide.Explanations}}

EXAMPLES: {{.Guide.Examples}}

DEPTH: {{.Guide.Depth}}

COMPLEXITY: {{.Guide.Complexity}}


=== COURSE STRUCTURE ===
- Topic: {{.Topic}}
- Duration: {{.Hours}} hours total
- Difficulty: {{.Difficulty}}
- Modules: {{.Layout.Modules}} modules
- Lessons per module: {{.Layout.LessonsPerModule}}

=== BLOOM'S TAXONOMY PROGRESSION ===
Structure the course to progress through cognitive levels:
{{.BloomLines}}

=== MANDATORY LESSON CONTENT STRUCTURE ===

Each lesson's "content" field MUST be a JSON object with ALL these sections:

{
  "introduction": "1-2 substantial paragraphs setting context. Assume learner has completed prior lessons. Use friendly instructor tone. Explain why this topic matters.",

  "lesson_overview": [
    "First major topic we'll cover",
    "Second major topic we'll cover",
    "Third major topic we'll cover",
    "What you'll be able to do after this lesson"
  ],

  "core_concepts": [
    {
      "title": "First Core Concept Title",
      "explanation": "2-3 detailed paragraphs explaining this concept thoroughly. Include the what, why, and how. Use analogies where helpful. This should be substantial teaching content, not a summary.",
      "code_example": "// Optional code example\nfunction example() {\n  return 'relevant code';\n}"
    },
    {
      "title": "Second Core Concept Title",
      "explanation": "Another 2-3 paragraphs of detailed explanation. Build on the previous concept. Connect ideas together.",
      "code_example": null
    }
  ],

  "guided_walkthrough": [
    "Step 1: Start with the fundamental building block. Explain what we're doing and why.",
    "Step 2: Build on step 1 by adding the next layer. Explain the connection.",
    "Step 3: Introduce a variation or edge case. Explain how to handle it.",
    "Step 4: Show how everything comes together. Provide the complete picture.",
    "Step 5: Explain what to watch out for and how to verify correctness."
  ],

  "practical_examples": [
    {
      "description": "Real-world scenario where this applies",
      "code": "// Complete working code example\nconst example = () => {\n  // implementation\n};",
      "explanation": "Detailed explanation of how this code works and why each part matters."
    },
    {
      "description": "Another practical application",
      "code": "// Another code example or null if not applicable",
      "explanation": "Walk through this example step by step."
    }
  ],

  "common_pitfalls": [
    "Mistake 1: Description of what goes wrong and WHY it happens",
    "Mistake 2: Another common error with explanation of the underlying cause",
    "Mistake 3: A subtle issue that even experienced developers encounter"
  ],

  "mental_model": "A clear analogy or visualization that helps learners think correctly about this concept. For example, think of X like Y because... This should be memorable and help cement understanding.",

  "summary": "A comprehensive recap of the key points covered in this lesson. Reinforce the main takeaways. Connect back to the learning objectives. This should be 2-3 sentences.",

  "further_thinking": [
    "Reflective question 1 aligned with the Bloom level",
    "Application prompt 2 that encourages deeper thinking",
    "Challenge question 3 that extends the learning"
  ]
}

=== CONTENT REQUIREMENTS ===

FOR THE TOPIC "{{.Topic}}":
1. Use real terminology and concepts from {{.Topic}}
2. Include practical, working code examples where applicable
3. Reference real tools, libraries, or practices used in {{.Topic}}
4. Make examples specific to {{.Topic}}, NOT generic programming examples
5. Ensure content builds progressively from module to module

=== QUIZ REQUIREMENTS ===

Each lesson needs 3 quiz questions:
- Mix of difficulty levels (easy, medium, hard)
- Aligned with the Bloom level of the lesson
- Include explanation for the correct answer

=== JSON OUTPUT SCHEMA ===

Return ONLY this JSON (no other text, no markdown code blocks):

{
  "title": "Professional course title about {{.Topic}}",
  "overview": "2-3 sentences describing what learners will master in this course",
  "modules": [
    {
      "module_title": "Module 1: Foundation of {{.Topic}}",
      "module_description": "What this module covers and why it matters",
      "lessons": [
        {
          "lesson_title": "Specific lesson title about {{.Topic}}",
          "bloom_level": "Remember",
          "learning_outcomes": [
            "Specific, measurable outcome 1",
            "Specific, measurable outcome 2"
          ],
          "content": {THE FULL STRUCTURED CONTENT OBJECT AS SHOWN ABOVE},
          "estimated_duration_minutes": 30,
          "quiz": [
            {
              "question": "Specific question about {{.Topic}}",
              "options": ["Correct answer", "Plausible wrong 1", "Plausible wrong 2", "Plausible wrong 3"],
              "correct_answer": "Correct answer",
              "difficulty": "easy",
              "explanation": "Why this is correct and what to understand"
            }
          ]
        }
      ]
    }
  ]
}

REMEMBER:
- Each lesson content must be COMPREHENSIVE and STRUCTURED
- Do NOT write short summaries - write REAL educational content
- The content object must have ALL required fields
- This should feel like reading a professional course, not a blog post`))
