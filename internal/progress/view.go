package progress

import (
	"time"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/mastery"
)

// LessonView is the per-lesson row of the progress page.
type LessonView struct {
	LessonID          string             `json:"lesson_id"`
	Completed         bool               `json:"completed"`
	QuizAttempts      int                `json:"quiz_attempts"`
	BestScore         float64            `json:"best_score"`
	CurrentDifficulty mastery.Difficulty `json:"current_difficulty"`
	Mastery           mastery.Level      `json:"mastery"`
}

type ModuleView struct {
	ModuleID    string       `json:"module_id"`
	ModuleTitle string       `json:"module_title"`
	Lessons     []LessonView `json:"lessons"`
}

// CourseView is the detailed progress of one course, laid out in course
// order with defaults for lessons never attempted.
type CourseView struct {
	CourseID           string       `json:"course_id"`
	OverallProgress    float64      `json:"overall_progress"`
	CurrentModuleIndex int          `json:"current_module_index"`
	CurrentLessonIndex int          `json:"current_lesson_index"`
	CompletedLessons   []string     `json:"completed_lessons"`
	StartedAt          time.Time    `json:"started_at"`
	LastAccessedAt     time.Time    `json:"last_accessed_at"`
	Modules            []ModuleView `json:"modules"`
}

// Detail builds the progress page for c. Mastery is derived from the latest
// score rather than the best one.
func Detail(c *course.Course, p *CourseProgress) CourseView {
	v := CourseView{
		CourseID:           c.ID,
		OverallProgress:    p.OverallProgress,
		CurrentModuleIndex: p.CurrentModuleIndex,
		CurrentLessonIndex: p.CurrentLessonIndex,
		CompletedLessons:   p.CompletedLessons,
		StartedAt:          p.StartedAt,
		LastAccessedAt:     p.LastAccessedAt,
		Modules:            make([]ModuleView, 0, len(c.Modules)),
	}
	for _, m := range c.Modules {
		mv := ModuleView{ModuleID: m.ID, ModuleTitle: m.Title, Lessons: make([]LessonView, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			lp, ok := p.Lesson(m.ID, l.ID)
			if !ok {
				mv.Lessons = append(mv.Lessons, LessonView{
					LessonID:          l.ID,
					CurrentDifficulty: mastery.Medium,
					Mastery:           mastery.LevelFor(0, 0),
				})
				continue
			}
			mv.Lessons = append(mv.Lessons, LessonView{
				LessonID:          l.ID,
				Completed:         lp.Completed,
				QuizAttempts:      lp.QuizAttempts,
				BestScore:         lp.BestScore,
				CurrentDifficulty: lp.CurrentDifficulty,
				Mastery:           mastery.LevelFor(lp.SmoothedScore*100, lp.QuizAttempts),
			})
		}
		v.Modules = append(v.Modules, mv)
	}
	return v
}

// Overview is one row of the all-courses progress listing.
type Overview struct {
	CourseID           string    `json:"course_id"`
	CourseTitle        string    `json:"course_title"`
	OverallProgress    float64   `json:"overall_progress"`
	CurrentModuleIndex int       `json:"current_module_index"`
	CurrentLessonIndex int       `json:"current_lesson_index"`
	CompletedLessons   []string  `json:"completed_lessons"`
	LastAccessedAt     time.Time `json:"last_accessed_at"`
}

func NewOverview(s course.Summary, p *CourseProgress) Overview {
	return Overview{
		CourseID:           s.ID,
		CourseTitle:        s.Title,
		OverallProgress:    p.OverallProgress,
		CurrentModuleIndex: p.CurrentModuleIndex,
		CurrentLessonIndex: p.CurrentLessonIndex,
		CompletedLessons:   p.CompletedLessons,
		LastAccessedAt:     p.LastAccessedAt,
	}
}
