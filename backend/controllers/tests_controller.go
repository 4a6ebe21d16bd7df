package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/quiz"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

type TestsController struct {
	Cfg      *config.Config
	Sessions *services.TestSessionService
}

func NewTestsController(cfg *config.Config, sessions *services.TestSessionService) *TestsController {
	return &TestsController{Cfg: cfg, Sessions: sessions}
}

type StartTestRequest struct {
	StepID uint `json:"step_id" validate:"required,gt=0"`
}

type QuestionAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	AnswerIDs  []uint `json:"answer_ids" validate:"required"`
}

type ScoreTestRequest struct {
	ResultID  uint                    `json:"result_id" validate:"required,gt=0"`
	Questions []QuestionAnswerRequest `json:"questions" validate:"required,min=1,dive"`
}

func (r *ScoreTestRequest) answers() []quiz.Answer {
	out := make([]quiz.Answer, 0, len(r.Questions))
	for _, q := range r.Questions {
		out = append(out, quiz.Answer{QuestionID: q.QuestionID, AnswerIDs: q.AnswerIDs})
	}
	return out
}

// StartTest godoc
// @Summary Start a step test
// @Description Opens a new session and returns a random question set without answer correctness
// @Tags tests
// @Accept json
// @Produce json
// @Param request body StartTestRequest true "Step to test"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subject/steps/start-test [post]
func (tc *TestsController) StartTest(c *fiber.Ctx) error {
	var req StartTestRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	started, err := tc.Sessions.StartTest(c.UserContext(), utils.CurrentUserID(c), req.StepID)
	if err != nil {
		return utils.FromError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"result_id": started.ResultID,
		"test":      stepTestView(&started.StepTest),
		"questions": started.Questions,
	})
}

// FinishTest godoc
// @Summary Finish a step test
// @Description Scores the answers with question-type bonuses and returns every answered question with its correctness
// @Tags tests
// @Accept json
// @Produce json
// @Param request body ScoreTestRequest true "Session and answers"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subject/finish-step-test [post]
func (tc *TestsController) FinishTest(c *fiber.Ctx) error {
	var req ScoreTestRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := tc.Sessions.FinishTest(c.UserContext(), utils.CurrentUserID(c), req.ResultID, req.answers())
	if err != nil {
		return utils.FromError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"result_id":               out.Session.ID,
		"total_max_ball":          out.Score.MaxBall,
		"ball":                    out.Score.Ball,
		"percentage":              out.Score.Percentage,
		"correct_answers_count":   out.CorrectCount,
		"incorrect_answers_count": out.IncorrectCount,
		"finished":                out.Session.Finished,
		"questions":               answeredQuestionsView(out.Session),
	})
}

// SubmitTest godoc
// @Summary Submit a step test
// @Description Scores the answers, closes the session and unlocks the next step when the passing ball is reached
// @Tags tests
// @Accept json
// @Produce json
// @Param request body ScoreTestRequest true "Session and answers"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subject/step-test/submit [post]
func (tc *TestsController) SubmitTest(c *fiber.Ctx) error {
	var req ScoreTestRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := tc.Sessions.SubmitTest(c.UserContext(), utils.CurrentUserID(c), req.ResultID, req.answers())
	if err != nil {
		return utils.FromError(c, err)
	}

	message := "Test completed"
	if out.Passed {
		message = "Test completed, next step unlocked"
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":    message,
		"result_id":  out.Session.ID,
		"ball":       out.Score.Ball,
		"percentage": out.Score.Percentage,
		"passed":     out.Passed,
	})
}

// GetTestResult godoc
// @Summary Get a test result
// @Description Returns a session of the current user with its recorded answers
// @Tags tests
// @Produce json
// @Param id path int true "Result ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subject/results/{id} [get]
func (tc *TestsController) GetTestResult(c *fiber.Ctx) error {
	resultID, ok := parseID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid result ID")
	}

	session, err := tc.Sessions.GetResult(c.UserContext(), utils.CurrentUserID(c), resultID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, sessionView(session))
}
