package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/models"
	"stepwise/backend/testutil"
	"stepwise/backend/utils"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
)

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

func setup() {
	cfg = testutil.Config()
	cfg.DBName = "file:routes_test?mode=memory&cache=shared"

	var err error
	db, err = utils.InitDB(cfg)
	if err != nil {
		panic(err)
	}
	app = NewApp(db, cfg, zap.NewNop())
}

func teardown() {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

type envelope struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Details map[string]interface{} `json:"details"`
}

func doJSON(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func register(t *testing.T, email string) string {
	t.Helper()
	status, out := doJSON(t, http.MethodPost, "/api/account/register", "", map[string]string{
		"username": "learner",
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, status, out.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAccountFlow(t *testing.T) {
	token := register(t, "account@example.com")

	status, out := doJSON(t, http.MethodPost, "/api/account/login", "", map[string]string{
		"email":    "account@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, out.Success)

	status, _ = doJSON(t, http.MethodPost, "/api/account/login", "", map[string]string{
		"email":    "account@example.com",
		"password": "nope-nope",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, out = doJSON(t, http.MethodGet, "/api/account/profile", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Data, &profile))
	assert.Equal(t, "account@example.com", profile["email"])
	assert.EqualValues(t, 0, profile["user_total_ball"])

	status, _ = doJSON(t, http.MethodGet, "/api/account/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	status, out := doJSON(t, http.MethodPost, "/api/account/register", "", map[string]string{
		"username": "x",
		"email":    "not-an-email",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, out.Success)
	assert.Equal(t, "email", out.Details["email"])
	assert.Equal(t, "required", out.Details["password"])
	assert.Equal(t, "min", out.Details["username"])
}

func TestCategoryView(t *testing.T) {
	category := testutil.SeedCategory(t, db, "Route Category")
	icon := testutil.SeedMedia(t, db, "icons/a.png")
	require.NoError(t, db.Model(category).Update("icon_id", icon.ID).Error)
	testutil.SeedSubject(t, db, category.ID, "Route Subject")

	path := fmt.Sprintf("/api/subject/category/%d", category.ID)
	status, out := doJSON(t, http.MethodGet, path, "", nil)
	require.Equal(t, fiber.StatusOK, status)

	var view struct {
		ClickCount int    `json:"click_count"`
		Icon       string `json:"icon"`
		Subjects   []struct {
			Name string `json:"name"`
		} `json:"subjects"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &view))
	assert.Equal(t, 1, view.ClickCount)
	assert.Equal(t, "http://media.test/media/icons/a.png", view.Icon)
	require.Len(t, view.Subjects, 1)

	status, _ = doJSON(t, http.MethodGet, "/api/subject/category/99999", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = doJSON(t, http.MethodGet, "/api/subject/category/abc", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLearningFlow(t *testing.T) {
	token := register(t, "flow@example.com")

	category := testutil.SeedCategory(t, db, "Flow Category")
	subject := testutil.SeedSubject(t, db, category.ID, "Flow Subject")
	first := testutil.SeedStep(t, db, subject.ID, 1)
	second := testutil.SeedStep(t, db, subject.ID, 2)
	test := testutil.SeedStepTest(t, db, first.ID, models.TestTypeMidterm, 50, 2)
	var questions []*models.TestQuestion
	for i := 0; i < 2; i++ {
		questions = append(questions, testutil.SeedQuestion(t, db, test.ID, models.QuestionTypeSingle, models.LevelEasy,
			testutil.AnswerSpec{Text: "yes", Correct: true},
			testutil.AnswerSpec{Text: "no"},
		))
	}

	secondPath := fmt.Sprintf("/api/subject/steps/%d", second.ID)

	// step two before enrolling
	status, _ := doJSON(t, http.MethodGet, secondPath, token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, http.MethodPost, fmt.Sprintf("/api/subject/start-subject/%d", subject.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	// step two still locked
	status, out := doJSON(t, http.MethodGet, secondPath, token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "you were not allowed to pass next step", out.Message)

	status, out = doJSON(t, http.MethodGet, fmt.Sprintf("/api/subject/steps/%d", first.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var stepView struct {
		Test struct {
			TimeForTest int64 `json:"time_for_test"`
		} `json:"test"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &stepView))
	assert.EqualValues(t, 600, stepView.Test.TimeForTest)

	status, out = doJSON(t, http.MethodPost, "/api/subject/steps/start-test", token, map[string]uint{"step_id": first.ID})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(out.Data), "is_correct")
	var started struct {
		ResultID  uint `json:"result_id"`
		Questions []struct {
			ID uint `json:"id"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &started))
	require.Len(t, started.Questions, 2)

	payload := map[string]interface{}{
		"result_id": started.ResultID,
		"questions": []map[string]interface{}{
			{"question_id": questions[0].ID, "answer_ids": []uint{questions[0].Answers[0].ID}},
			{"question_id": questions[1].ID, "answer_ids": []uint{questions[1].Answers[0].ID}},
		},
	}
	status, out = doJSON(t, http.MethodPost, "/api/subject/step-test/submit", token, payload)
	require.Equal(t, fiber.StatusOK, status, out.Message)
	var submitted struct {
		Ball       float64 `json:"ball"`
		Percentage float64 `json:"percentage"`
		Passed     bool    `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &submitted))
	assert.Equal(t, 100.0, submitted.Ball)
	assert.Equal(t, 100.0, submitted.Percentage)
	assert.True(t, submitted.Passed)

	status, _ = doJSON(t, http.MethodPost, "/api/subject/step-test/submit", token, payload)
	assert.Equal(t, fiber.StatusConflict, status)

	status, out = doJSON(t, http.MethodGet, fmt.Sprintf("/api/subject/results/%d", started.ResultID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(out.Data), "is_correct")

	other := register(t, "other-flow@example.com")
	status, _ = doJSON(t, http.MethodGet, fmt.Sprintf("/api/subject/results/%d", started.ResultID), other, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, http.MethodGet, secondPath, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, out = doJSON(t, http.MethodGet, "/api/subject/progress", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var progress []struct {
		TotalTestBall float64 `json:"total_test_ball"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &progress))
	require.Len(t, progress, 1)
	assert.Equal(t, 100.0, progress[0].TotalTestBall)
}

func TestScoreRequestValidation(t *testing.T) {
	token := register(t, "validation@example.com")

	status, out := doJSON(t, http.MethodPost, "/api/subject/finish-step-test", token, map[string]interface{}{
		"result_id": 1,
		"questions": []map[string]interface{}{},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "min", out.Details["questions"])
}
