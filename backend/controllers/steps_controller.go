package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

type StepsController struct {
	Cfg        *config.Config
	Gatekeeper *services.Gatekeeper
}

func NewStepsController(cfg *config.Config, gatekeeper *services.Gatekeeper) *StepsController {
	return &StepsController{Cfg: cfg, Gatekeeper: gatekeeper}
}

func (sc *StepsController) GetStep(c *fiber.Ctx) error {
	stepID, ok := parseID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid step ID")
	}

	step, err := sc.Gatekeeper.GetStep(c.UserContext(), utils.CurrentUserID(c), stepID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stepDetailView(sc.Cfg.MediaHost, step))
}
