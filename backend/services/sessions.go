package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stepwise/backend/config"
	"stepwise/backend/models"
	"stepwise/backend/quiz"
)

type AnswerView struct {
	ID     uint   `json:"id"`
	Answer string `json:"answer"`
}

// QuestionView is a question as shown to a test taker. It never carries
// answer correctness.
type QuestionView struct {
	ID           uint         `json:"id"`
	QuestionType string       `json:"question_type"`
	Question     string       `json:"question"`
	Answers      []AnswerView `json:"test_answers"`
}

type StartedTest struct {
	ResultID  uint
	StepTest  models.StepTest
	Questions []QuestionView
}

type FinishOutcome struct {
	Session        *models.UserTotalTestResult
	Score          *quiz.Score
	CorrectCount   int64
	IncorrectCount int64
}

type SubmitOutcome struct {
	Session *models.UserTotalTestResult
	Score   *quiz.Score
	Passed  bool
}

// TestSessionService runs the test-session lifecycle: start, finish, submit.
type TestSessionService struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Logger   *zap.Logger
	Progress *ProgressService

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewTestSessionService(db *gorm.DB, cfg *config.Config, logger *zap.Logger, progress *ProgressService) *TestSessionService {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestSessionService{
		DB:       db,
		Cfg:      cfg,
		Logger:   logger,
		Progress: progress,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

func (s *TestSessionService) sample(pool []models.TestQuestion, k int) []models.TestQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return quiz.Sample(pool, k, s.rnd)
}

func (s *TestSessionService) options(mode quiz.ScoringMode) quiz.Options {
	ordering, err := quiz.ParseOrderingMode(s.Cfg.OrderingMode)
	if err != nil {
		s.Logger.Warn("falling back to canonical ordering", zap.String("mode", s.Cfg.OrderingMode))
		ordering = quiz.OrderingCanonical
	}
	return quiz.Options{
		Mode:                mode,
		Ordering:            ordering,
		BonusByQuestionType: s.Cfg.BonusByQuestionType,
	}
}

// StartTest opens a new session on the step's test for a user whose step is
// not finished yet and draws the question set for it.
func (s *TestSessionService) StartTest(ctx context.Context, userID, stepID uint) (*StartedTest, error) {
	var started StartedTest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userStep models.UserStep
		err := tx.Where("user_id = ? AND step_id = ? AND finished = ?", userID, stepID, false).
			First(&userStep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "step %d is not open for this user", stepID)
		}
		if err != nil {
			return err
		}

		var stepTest models.StepTest
		err = tx.Where("step_id = ?", stepID).First(&stepTest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "step %d has no test", stepID)
		}
		if err != nil {
			return err
		}

		var pool []models.TestQuestion
		if err := tx.Preload("Answers", orderByID).
			Where("step_test_id = ? AND level IN ?", stepTest.ID, quiz.PoolLevels(stepTest.TestType)).
			Order("id").
			Find(&pool).Error; err != nil {
			return err
		}
		if len(pool) == 0 {
			return newError(KindNotFound, "no questions available for step %d", stepID)
		}

		drawn := s.sample(pool, stepTest.QuestionCount)
		ids := make([]uint, 0, len(drawn))
		for _, q := range drawn {
			ids = append(ids, q.ID)
		}
		raw, err := sonic.Marshal(ids)
		if err != nil {
			return err
		}

		session := models.UserTotalTestResult{StepTestID: stepTest.ID, UserID: userID, QuestionIDs: datatypes.JSON(raw)}
		if err := tx.Omit("StepTest").Create(&session).Error; err != nil {
			return err
		}
		if err := tx.Model(&userStep).Update("finished", false).Error; err != nil {
			return err
		}

		started = StartedTest{
			ResultID:  session.ID,
			StepTest:  stepTest,
			Questions: publicQuestions(drawn),
		}
		return nil
	})
	if err != nil {
		return nil, classify(s.Logger, "start test", err)
	}

	s.Logger.Info("test started",
		zap.Uint("user_id", userID),
		zap.Uint("step_id", stepID),
		zap.Uint("result_id", started.ResultID),
		zap.Int("questions", len(started.Questions)),
	)
	return &started, nil
}

// FinishTest scores a session with the bonus-weighted protocol. When
// FinishClosesSession is off the session stays open and can be finished
// again, each call adding another set of answer rows.
func (s *TestSessionService) FinishTest(ctx context.Context, userID, resultID uint, answers []quiz.Answer) (*FinishOutcome, error) {
	var out FinishOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, score, err := s.score(tx, userID, resultID, answers, quiz.ModeFinish, s.Cfg.FinishClosesSession)
		if err != nil {
			return err
		}
		correct, incorrect, err := countSelections(tx, userID, session.ID)
		if err != nil {
			return err
		}
		if err := tx.Preload("Results", orderByID).
			Preload("Results.Question").
			Preload("Results.Answers", orderByID).
			First(session, session.ID).Error; err != nil {
			return err
		}
		out = FinishOutcome{Session: session, Score: score, CorrectCount: correct, IncorrectCount: incorrect}
		return nil
	})
	if err != nil {
		return nil, classify(s.Logger, "finish test", err)
	}
	return &out, nil
}

// SubmitTest scores a session with the flat protocol and closes it.
func (s *TestSessionService) SubmitTest(ctx context.Context, userID, resultID uint, answers []quiz.Answer) (*SubmitOutcome, error) {
	var out SubmitOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, score, err := s.score(tx, userID, resultID, answers, quiz.ModeSubmit, true)
		if err != nil {
			return err
		}
		out = SubmitOutcome{Session: session, Score: score, Passed: score.Ball >= s.Cfg.PassingBall}
		return nil
	})
	if err != nil {
		return nil, classify(s.Logger, "submit test", err)
	}

	s.Logger.Info("test submitted",
		zap.Uint("user_id", userID),
		zap.Uint("result_id", resultID),
		zap.Float64("ball", out.Score.Ball),
		zap.Bool("passed", out.Passed),
	)
	return &out, nil
}

// GetResult returns a session of the user with its recorded answers.
func (s *TestSessionService) GetResult(ctx context.Context, userID, resultID uint) (*models.UserTotalTestResult, error) {
	var session models.UserTotalTestResult
	err := s.DB.WithContext(ctx).
		Preload("StepTest").
		Preload("Results", orderByID).
		Preload("Results.Question").
		Preload("Results.Answers", orderByID).
		First(&session, resultID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "test result %d not found", resultID)
	}
	if err != nil {
		return nil, classify(s.Logger, "get test result", err)
	}
	if session.UserID != userID {
		return nil, newError(KindForbidden, "test result %d belongs to another user", resultID)
	}
	return &session, nil
}

// score grades answers against a locked open session and stores the
// outcome. The finished flag flips false->true only through a conditional
// update, so two racing calls cannot both close the same session.
func (s *TestSessionService) score(tx *gorm.DB, userID, resultID uint, answers []quiz.Answer, mode quiz.ScoringMode, closeSession bool) (*models.UserTotalTestResult, *quiz.Score, error) {
	session, err := lockOpenSession(tx, userID, resultID)
	if err != nil {
		return nil, nil, err
	}
	if len(answers) == 0 {
		return nil, nil, newError(KindValidation, "no questions submitted")
	}
	if err := checkDrawn(session, answers); err != nil {
		return nil, nil, err
	}

	questions, err := loadQuestions(tx, session.StepTestID, answers)
	if err != nil {
		return nil, nil, err
	}
	score, err := quiz.Grade(&session.StepTest, questions, answers, s.options(mode))
	if err != nil {
		return nil, nil, err
	}
	if err := recordResults(tx, session, answers, score, questions); err != nil {
		return nil, nil, err
	}

	ball, percentage, correct := score.Ball, score.Percentage, score.CorrectQuestions()
	updates := map[string]interface{}{
		"ball":            ball,
		"percentage":      percentage,
		"correct_answers": correct,
	}
	if closeSession {
		updates["finished"] = true
	}
	res := tx.Model(&models.UserTotalTestResult{}).
		Where("id = ? AND finished = ?", session.ID, false).
		Updates(updates)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected != 1 {
		return nil, nil, newError(KindAlreadyFinished, "test result %d is already finished", resultID)
	}
	session.Ball = &ball
	session.Percentage = &percentage
	session.CorrectAnswers = &correct
	session.Finished = closeSession

	if closeSession && s.Progress != nil {
		if err := s.Progress.recordCompletion(tx, userID, &session.StepTest, ball); err != nil {
			return nil, nil, err
		}
	}

	s.Logger.Debug("session scored",
		zap.Stringer("mode", mode),
		zap.Uint("result_id", session.ID),
		zap.Float64("ball", ball),
		zap.Float64("percentage", percentage),
	)
	return session, score, nil
}

func lockOpenSession(tx *gorm.DB, userID, resultID uint) (*models.UserTotalTestResult, error) {
	var session models.UserTotalTestResult
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, resultID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "test result %d not found", resultID)
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, newError(KindForbidden, "test result %d belongs to another user", resultID)
	}
	if session.Finished {
		return nil, newError(KindAlreadyFinished, "test result %d is already finished", resultID)
	}
	if err := tx.First(&session.StepTest, session.StepTestID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// checkDrawn rejects payloads that answer a question twice or answer a
// question the session never drew.
func checkDrawn(session *models.UserTotalTestResult, answers []quiz.Answer) error {
	seen := make(map[uint]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return &Error{
				Kind:    KindValidation,
				Message: fmt.Sprintf("question %d is answered more than once", a.QuestionID),
				Details: map[string]string{"questions": "unique"},
			}
		}
		seen[a.QuestionID] = struct{}{}
	}

	// sessions stored before the drawn set was recorded fall back to
	// the step-test scoping in loadQuestions
	if len(session.QuestionIDs) == 0 {
		return nil
	}
	var drawn []uint
	if err := sonic.Unmarshal(session.QuestionIDs, &drawn); err != nil {
		return err
	}
	allowed := make(map[uint]struct{}, len(drawn))
	for _, id := range drawn {
		allowed[id] = struct{}{}
	}
	for _, a := range answers {
		if _, ok := allowed[a.QuestionID]; !ok {
			return newError(KindNotFound, "question %d was not drawn for this session", a.QuestionID)
		}
	}
	return nil
}

// loadQuestions fetches the answered questions, restricted to the session's
// test so a payload cannot score questions of another test.
func loadQuestions(tx *gorm.DB, stepTestID uint, answers []quiz.Answer) (map[uint]*models.TestQuestion, error) {
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	var list []models.TestQuestion
	if err := tx.Preload("Answers", orderByID).
		Where("step_test_id = ? AND id IN ?", stepTestID, ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*models.TestQuestion, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func recordResults(tx *gorm.DB, session *models.UserTotalTestResult, answers []quiz.Answer, score *quiz.Score, questions map[uint]*models.TestQuestion) error {
	for i, qs := range score.Questions {
		submitted := answers[i].AnswerIDs
		if submitted == nil {
			submitted = []uint{}
		}
		raw, err := sonic.Marshal(submitted)
		if err != nil {
			return err
		}
		result := models.UserTestResult{
			TotalResultID:      session.ID,
			UserID:             session.UserID,
			QuestionID:         qs.QuestionID,
			Answers:            pickAnswers(questions[qs.QuestionID], qs.Chosen),
			SubmittedAnswerIDs: datatypes.JSON(raw),
		}
		if err := tx.Omit("Question", "Answers.*").Create(&result).Error; err != nil {
			return err
		}
	}
	return nil
}

func pickAnswers(q *models.TestQuestion, ids []uint) []models.TestAnswer {
	out := make([]models.TestAnswer, 0, len(ids))
	for _, id := range ids {
		for _, ans := range q.Answers {
			if ans.ID == id {
				out = append(out, ans)
				break
			}
		}
	}
	return out
}

// countSelections counts recorded answer rows of the session by correctness.
// A question with several selected answers contributes one row per answer,
// and repeated finishes of an open session are all counted.
func countSelections(tx *gorm.DB, userID, resultID uint) (correct, incorrect int64, err error) {
	base := func(isCorrect bool) *gorm.DB {
		return tx.Table("user_test_result_answers AS j").
			Joins("JOIN user_test_results AS r ON r.id = j.user_test_result_id").
			Joins("JOIN test_answers AS a ON a.id = j.test_answer_id").
			Where("r.user_id = ? AND r.total_result_id = ? AND a.is_correct = ?", userID, resultID, isCorrect)
	}
	if err = base(true).Count(&correct).Error; err != nil {
		return 0, 0, err
	}
	if err = base(false).Count(&incorrect).Error; err != nil {
		return 0, 0, err
	}
	return correct, incorrect, nil
}

func publicQuestions(questions []models.TestQuestion) []QuestionView {
	out := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Question:     q.Question,
			Answers:      make([]AnswerView, 0, len(q.Answers)),
		}
		for _, ans := range q.Answers {
			view.Answers = append(view.Answers, AnswerView{ID: ans.ID, Answer: ans.Answer})
		}
		out = append(out, view)
	}
	return out
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
