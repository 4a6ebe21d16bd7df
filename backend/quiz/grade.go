package quiz

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"stepwise/backend/models"
)

// ScoringMode selects one of the two grading protocols. They are not
// comparable: finish adds a level bonus and divides by the question count,
// submit awards a flat ball and divides by the maximum ball.
type ScoringMode int

const (
	// ModeFinish awards CalculateTestBall per correct answer, grades every
	// non-multiple question by its last valid answer and reports
	// floor(ball*100/questions).
	ModeFinish ScoringMode = iota + 1
	// ModeSubmit awards BallForEachTest per correct answer, grades ordering
	// questions by sequence, grades other questions by their first valid
	// answer and reports ball/maxBall*100.
	ModeSubmit
)

func (m ScoringMode) String() string {
	switch m {
	case ModeFinish:
		return "finish"
	case ModeSubmit:
		return "submit"
	default:
		return fmt.Sprintf("ScoringMode(%d)", int(m))
	}
}

// OrderingMode selects how ordering questions are checked under ModeSubmit.
type OrderingMode int

const (
	// OrderingCanonical accepts the submission when the answer ids appear in
	// ascending order of their stored order values.
	OrderingCanonical OrderingMode = iota
	// OrderingLegacy compares each submitted id with the stored order of the
	// answer it names. Kept for parity with old results.
	OrderingLegacy
)

func ParseOrderingMode(s string) (OrderingMode, error) {
	switch s {
	case "", "canonical":
		return OrderingCanonical, nil
	case "legacy":
		return OrderingLegacy, nil
	default:
		return 0, fmt.Errorf("unknown ordering mode %q", s)
	}
}

type Options struct {
	Mode     ScoringMode
	Ordering OrderingMode
	// BonusByQuestionType feeds the question type into CalculateTestBall
	// instead of the level.
	BonusByQuestionType bool
}

var (
	ErrNoAnswers       = errors.New("no questions submitted")
	ErrUnknownQuestion = errors.New("question does not belong to this test")
	ErrUnknownMode     = errors.New("unknown scoring mode")
)

// Answer is one submitted question with the chosen answer ids.
type Answer struct {
	QuestionID uint
	AnswerIDs  []uint
}

type QuestionScore struct {
	QuestionID uint
	Ball       float64
	// Chosen are the answers to record for this question.
	Chosen []uint
}

type Score struct {
	Ball       float64
	MaxBall    float64
	Percentage float64
	Questions  []QuestionScore
}

// CorrectQuestions counts questions that earned any ball.
func (s *Score) CorrectQuestions() int {
	n := 0
	for _, q := range s.Questions {
		if q.Ball > 0 {
			n++
		}
	}
	return n
}

// Grade scores answers against the questions of test. Every answered
// question must be present in questions, otherwise ErrUnknownQuestion is
// returned and nothing is scored.
func Grade(test *models.StepTest, questions map[uint]*models.TestQuestion, answers []Answer, opts Options) (*Score, error) {
	if opts.Mode != ModeFinish && opts.Mode != ModeSubmit {
		return nil, ErrUnknownMode
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	score := &Score{Questions: make([]QuestionScore, 0, len(answers))}
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, a.QuestionID)
		}
		qs := gradeQuestion(q, a.AnswerIDs, test.BallForEachTest, opts)
		score.Ball += qs.Ball
		score.Questions = append(score.Questions, qs)
	}

	n := float64(len(answers))
	score.MaxBall = n * test.BallForEachTest
	switch opts.Mode {
	case ModeFinish:
		score.Percentage = math.Floor(score.Ball * 100 / n)
	case ModeSubmit:
		if score.MaxBall > 0 {
			score.Percentage = score.Ball / score.MaxBall * 100
		}
	}
	return score, nil
}

func gradeQuestion(q *models.TestQuestion, selected []uint, base float64, opts Options) QuestionScore {
	qs := QuestionScore{QuestionID: q.ID, Chosen: []uint{}}
	award := base
	if opts.Mode == ModeFinish {
		key := q.Level
		if opts.BonusByQuestionType {
			key = q.QuestionType
		}
		award = CalculateTestBall(key, base)
	}

	switch {
	case q.QuestionType == models.QuestionTypeMultiple:
		for _, ans := range validAnswers(q, selected) {
			qs.Chosen = append(qs.Chosen, ans.ID)
			if ans.IsCorrect {
				qs.Ball += award
			}
		}

	case q.QuestionType == models.QuestionTypeOrdering && opts.Mode == ModeSubmit:
		for _, id := range selected {
			if findAnswer(q, id) != nil {
				qs.Chosen = append(qs.Chosen, id)
			}
		}
		if orderingMatches(q, selected, opts.Ordering) {
			qs.Ball = award
		}

	default:
		valid := validAnswers(q, selected)
		if len(valid) == 0 {
			return qs
		}
		pick := valid[0]
		if opts.Mode == ModeFinish {
			pick = valid[len(valid)-1]
		}
		qs.Chosen = append(qs.Chosen, pick.ID)
		if pick.IsCorrect {
			qs.Ball = award
		}
	}
	return qs
}

// validAnswers returns the answers of q whose ids were selected, ordered by
// id. Ids that belong to other questions are dropped.
func validAnswers(q *models.TestQuestion, selected []uint) []models.TestAnswer {
	want := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	out := make([]models.TestAnswer, 0, len(selected))
	for _, ans := range q.Answers {
		if _, ok := want[ans.ID]; ok {
			out = append(out, ans)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func findAnswer(q *models.TestQuestion, id uint) *models.TestAnswer {
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return &q.Answers[i]
		}
	}
	return nil
}

func orderingMatches(q *models.TestQuestion, selected []uint, mode OrderingMode) bool {
	if mode == OrderingLegacy {
		if len(selected) == 0 {
			return false
		}
		for _, id := range selected {
			ans := findAnswer(q, id)
			if ans == nil || ans.Order == nil || *ans.Order != int(id) {
				return false
			}
		}
		return true
	}

	canonical := CanonicalOrder(q)
	if len(canonical) == 0 || len(canonical) != len(selected) {
		return false
	}
	for i := range canonical {
		if canonical[i] != selected[i] {
			return false
		}
	}
	return true
}

// CanonicalOrder returns the ids of q's ordered answers sorted by their
// order value, ties broken by id.
func CanonicalOrder(q *models.TestQuestion) []uint {
	ordered := make([]models.TestAnswer, 0, len(q.Answers))
	for _, ans := range q.Answers {
		if ans.Order != nil {
			ordered = append(ordered, ans)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if *ordered[i].Order != *ordered[j].Order {
			return *ordered[i].Order < *ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})
	ids := make([]uint, len(ordered))
	for i, ans := range ordered {
		ids[i] = ans.ID
	}
	return ids
}
