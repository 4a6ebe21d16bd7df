package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

type ProgressController struct {
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(cfg *config.Config, progress *services.ProgressService) *ProgressController {
	return &ProgressController{Cfg: cfg, Progress: progress}
}

// StartSubject godoc
// @Summary Start a subject
// @Description Enrolls the user in a subject, returning the existing enrollment when there is one
// @Tags progress
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subject/start-subject/{id} [post]
func (pc *ProgressController) StartSubject(c *fiber.Ctx) error {
	subjectID, ok := parseID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	enrollment, err := pc.Progress.StartSubject(c.UserContext(), utils.CurrentUserID(c), subjectID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, enrollmentView(enrollment))
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns the user's enrollments with a finished flag per step
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subject/progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	progress, err := pc.Progress.GetProgress(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.FromError(c, err)
	}

	result := make([]fiber.Map, 0, len(progress))
	for i := range progress {
		result = append(result, progressView(&progress[i]))
	}
	return utils.Success(c, fiber.StatusOK, result)
}
