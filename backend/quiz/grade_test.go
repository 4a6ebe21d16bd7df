package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stepwise/backend/models"
)

func answer(id uint, correct bool) models.TestAnswer {
	return models.TestAnswer{Model: gorm.Model{ID: id}, IsCorrect: correct}
}

func ordered(id uint, order int) models.TestAnswer {
	o := order
	return models.TestAnswer{Model: gorm.Model{ID: id}, IsCorrect: true, Order: &o}
}

func question(id uint, qtype, level string, answers ...models.TestAnswer) *models.TestQuestion {
	return &models.TestQuestion{
		Model:        gorm.Model{ID: id},
		QuestionType: qtype,
		Level:        level,
		Answers:      answers,
	}
}

func index(qs ...*models.TestQuestion) map[uint]*models.TestQuestion {
	out := make(map[uint]*models.TestQuestion, len(qs))
	for _, q := range qs {
		out[q.ID] = q
	}
	return out
}

func TestSubmitAllCorrectMultiple(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 2, QuestionCount: 3}
	qs := index(
		question(1, models.QuestionTypeMultiple, models.LevelEasy, answer(11, true), answer(12, false)),
		question(2, models.QuestionTypeMultiple, models.LevelEasy, answer(21, true), answer(22, false)),
		question(3, models.QuestionTypeMultiple, models.LevelEasy, answer(31, true), answer(32, false)),
	)
	answers := []Answer{
		{QuestionID: 1, AnswerIDs: []uint{11}},
		{QuestionID: 2, AnswerIDs: []uint{21}},
		{QuestionID: 3, AnswerIDs: []uint{31}},
	}

	score, err := Grade(test, qs, answers, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 6.0, score.Ball)
	assert.Equal(t, 6.0, score.MaxBall)
	assert.Equal(t, 100.0, score.Percentage)
	assert.Equal(t, 3, score.CorrectQuestions())
}

// The two protocols report on different bases and must not be compared.
func TestFinishAndSubmitAreNotComparable(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 10, QuestionCount: 5}
	var list []*models.TestQuestion
	for i := uint(1); i <= 5; i++ {
		list = append(list, question(i, models.QuestionTypeMultiple, models.LevelEasy,
			answer(i*10+1, true), answer(i*10+2, false)))
	}
	qs := index(list...)
	answers := []Answer{
		{QuestionID: 1, AnswerIDs: []uint{11}},
		{QuestionID: 2, AnswerIDs: []uint{21}},
		{QuestionID: 3, AnswerIDs: []uint{32}},
		{QuestionID: 4, AnswerIDs: []uint{42}},
		{QuestionID: 5, AnswerIDs: []uint{}},
	}

	submit, err := Grade(test, qs, answers, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 20.0, submit.Ball)
	assert.Equal(t, 40.0, submit.Percentage)

	finish, err := Grade(test, qs, answers, Options{Mode: ModeFinish})
	require.NoError(t, err)
	assert.Equal(t, 20.0, finish.Ball)
	assert.Equal(t, 400.0, finish.Percentage)
	assert.Equal(t, 50.0, finish.MaxBall)
}

func TestFinishAddsLevelBonus(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 1}
	qs := index(
		question(1, models.QuestionTypeSingle, models.LevelEasy, answer(11, true)),
		question(2, models.QuestionTypeSingle, models.LevelMedium, answer(21, true)),
		question(3, models.QuestionTypeMultiple, models.LevelHard, answer(31, true), answer(32, true)),
	)
	answers := []Answer{
		{QuestionID: 1, AnswerIDs: []uint{11}},
		{QuestionID: 2, AnswerIDs: []uint{21}},
		{QuestionID: 3, AnswerIDs: []uint{31, 32}},
	}

	score, err := Grade(test, qs, answers, Options{Mode: ModeFinish})
	require.NoError(t, err)
	// 1 + 2 + (3 + 3)
	assert.Equal(t, 9.0, score.Ball)
	assert.Equal(t, 300.0, score.Percentage)
}

func TestFinishBonusByQuestionType(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 1}
	qs := index(question(1, models.QuestionTypeSingle, models.LevelEasy, answer(11, true)))
	answers := []Answer{{QuestionID: 1, AnswerIDs: []uint{11}}}

	byLevel, err := Grade(test, qs, answers, Options{Mode: ModeFinish})
	require.NoError(t, err)
	byType, err := Grade(test, qs, answers, Options{Mode: ModeFinish, BonusByQuestionType: true})
	require.NoError(t, err)

	assert.Equal(t, 1.0, byLevel.Ball)
	assert.Equal(t, 3.0, byType.Ball)
}

func TestSingleChoicePickDiffersByMode(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 4}
	qs := index(question(1, models.QuestionTypeSingle, models.LevelEasy, answer(11, true), answer(12, false)))
	answers := []Answer{{QuestionID: 1, AnswerIDs: []uint{12, 11}}}

	finish, err := Grade(test, qs, answers, Options{Mode: ModeFinish})
	require.NoError(t, err)
	assert.Equal(t, []uint{12}, finish.Questions[0].Chosen)
	assert.Equal(t, 0.0, finish.Ball)

	submit, err := Grade(test, qs, answers, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, submit.Questions[0].Chosen)
	assert.Equal(t, 4.0, submit.Ball)
}

func TestMultipleIgnoresWrongAndForeignAnswers(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 3}
	qs := index(question(1, models.QuestionTypeMultiple, models.LevelEasy,
		answer(11, true), answer(12, false), answer(13, true)))
	answers := []Answer{{QuestionID: 1, AnswerIDs: []uint{13, 12, 99}}}

	score, err := Grade(test, qs, answers, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 3.0, score.Ball)
	assert.Equal(t, []uint{12, 13}, score.Questions[0].Chosen)
}

func TestSingleWithoutValidAnswerScoresZero(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 3}
	qs := index(question(1, models.QuestionTypeSingle, models.LevelEasy, answer(11, true)))

	score, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{55}}}, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Ball)
	assert.Empty(t, score.Questions[0].Chosen)
}

func TestOrderingCanonical(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 5}
	q := question(1, models.QuestionTypeOrdering, models.LevelEasy, ordered(30, 2), ordered(10, 3), ordered(20, 1))
	qs := index(q)

	assert.Equal(t, []uint{20, 30, 10}, CanonicalOrder(q))

	right, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{20, 30, 10}}}, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 5.0, right.Ball)
	assert.Equal(t, []uint{20, 30, 10}, right.Questions[0].Chosen)

	wrong, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{30, 20, 10}}}, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 0.0, wrong.Ball)

	partial, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{20, 30}}}, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 0.0, partial.Ball)
}

// Legacy ordering compares ids with order values, so the canonical answer
// fails and only a coincidence of ids and orders passes.
func TestOrderingLegacy(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 5}
	qs := index(question(1, models.QuestionTypeOrdering, models.LevelEasy, ordered(30, 2), ordered(10, 3), ordered(20, 1)))
	opts := Options{Mode: ModeSubmit, Ordering: OrderingLegacy}

	canonical, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{20, 30, 10}}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, canonical.Ball)

	coincident := index(question(2, models.QuestionTypeOrdering, models.LevelEasy, ordered(1, 1), ordered(2, 2)))
	score, err := Grade(test, coincident, []Answer{{QuestionID: 2, AnswerIDs: []uint{2, 1}}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 5.0, score.Ball)
}

// Under finish, ordering questions are graded like single choice.
func TestOrderingUnderFinishUsesLastAnswer(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 1}
	qs := index(question(1, models.QuestionTypeOrdering, models.LevelEasy, ordered(10, 1), ordered(20, 2)))

	score, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{20, 10}}}, Options{Mode: ModeFinish})
	require.NoError(t, err)
	assert.Equal(t, []uint{20}, score.Questions[0].Chosen)
	assert.Equal(t, 1.0, score.Ball)
}

func TestGradeErrors(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 1}
	qs := index(question(1, models.QuestionTypeSingle, models.LevelEasy, answer(11, true)))

	_, err := Grade(test, qs, nil, Options{Mode: ModeSubmit})
	assert.ErrorIs(t, err, ErrNoAnswers)

	_, err = Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{11}}, {QuestionID: 2}}, Options{Mode: ModeSubmit})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	_, err = Grade(test, qs, []Answer{{QuestionID: 1}}, Options{})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSubmitWithZeroBallTest(t *testing.T) {
	test := &models.StepTest{BallForEachTest: 0}
	qs := index(question(1, models.QuestionTypeSingle, models.LevelEasy, answer(11, true)))

	score, err := Grade(test, qs, []Answer{{QuestionID: 1, AnswerIDs: []uint{11}}}, Options{Mode: ModeSubmit})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Percentage)
}

func TestParseOrderingMode(t *testing.T) {
	m, err := ParseOrderingMode("legacy")
	require.NoError(t, err)
	assert.Equal(t, OrderingLegacy, m)

	m, err = ParseOrderingMode("")
	require.NoError(t, err)
	assert.Equal(t, OrderingCanonical, m)

	_, err = ParseOrderingMode("random")
	assert.Error(t, err)

	assert.Equal(t, "finish", ModeFinish.String())
	assert.Equal(t, "submit", ModeSubmit.String())
}
