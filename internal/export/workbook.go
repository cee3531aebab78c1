// Package export renders a course and a learner's progress as an xlsx
// workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/mastery"
	"github.com/abhisek/coursegen/internal/progress"
)

// Sheet names, in workbook order.
const (
	SheetCourse   = "Course"
	SheetQuiz     = "Quiz"
	SheetProgress = "Progress"
)

var (
	courseHeader   = []any{"Module", "Lesson", "Bloom Level", "Minutes", "Learning Outcomes", "Introduction"}
	quizHeader     = []any{"Lesson", "Question ID", "Question", "Options", "Correct Answer", "Difficulty", "Bloom Level", "Explanation"}
	progressHeader = []any{"Module", "Lesson", "Completed", "Attempts", "Best Score", "Difficulty", "Bloom Level", "Mastery"}
)

// Workbook builds the export. p may be nil when the learner has not started
// the course; the Progress sheet then lists every lesson as not started.
func Workbook(c *course.Course, p *progress.CourseProgress) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetCourse); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetQuiz, SheetProgress} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, bold: bold}
	w.header(SheetCourse, courseHeader)
	w.header(SheetQuiz, quizHeader)
	w.header(SheetProgress, progressHeader)

	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			w.row(SheetCourse, []any{
				m.Title, l.Title, string(l.BloomLevel), l.EstimatedMinutes,
				strings.Join(l.LearningOutcomes, "\n"), l.Content.Introduction,
			})
			for _, q := range l.Quiz {
				w.row(SheetQuiz, []any{
					l.Title, q.QuestionID, q.Question, strings.Join(q.Options, "\n"),
					q.CorrectAnswer, string(q.Difficulty), string(q.BloomLevel), q.Explanation,
				})
			}
			w.row(SheetProgress, progressRow(m, l, p))
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: c.Title, Subject: c.Topic, Creator: "coursegen"}); err != nil {
		return nil, err
	}
	for sheet, width := range map[string]float64{SheetCourse: 28, SheetQuiz: 32, SheetProgress: 22} {
		if err := f.SetColWidth(sheet, "A", "H", width); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func progressRow(m course.Module, l course.Lesson, p *progress.CourseProgress) []any {
	var lp *progress.LessonProgress
	if p != nil {
		lp, _ = p.Lesson(m.ID, l.ID)
	}
	if lp == nil {
		return []any{m.Title, l.Title, false, 0, 0.0, string(mastery.Medium), string(l.BloomLevel), mastery.LevelFor(0, 0).Level}
	}
	level := mastery.LevelFor(lp.SmoothedScore*100, lp.QuizAttempts)
	return []any{
		m.Title, l.Title, lp.Completed, lp.QuizAttempts, lp.BestScore,
		string(lp.CurrentDifficulty), string(lp.CurrentBloomLevel), level.Level,
	}
}

// sheetWriter appends rows per sheet and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	bold int
	rows map[string]int
	err  error
}

func (w *sheetWriter) header(sheet string, cells []any) {
	w.row(sheet, cells)
	if w.err == nil {
		w.err = w.f.SetRowStyle(sheet, 1, 1, w.bold)
	}
}

func (w *sheetWriter) row(sheet string, cells []any) {
	if w.err != nil {
		return
	}
	if w.rows == nil {
		w.rows = map[string]int{}
	}
	w.rows[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, w.rows[sheet])
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &cells)
}

// Write renders the workbook to out.
func Write(out io.Writer, c *course.Course, p *progress.CourseProgress) error {
	f, err := Workbook(c, p)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
