package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

type UserController struct {
	Cfg      *config.Config
	Accounts *services.AccountService
}

func NewUserController(cfg *config.Config, accounts *services.AccountService) *UserController {
	return &UserController{Cfg: cfg, Accounts: accounts}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user with the average ball of their test sessions
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /account/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	profile, err := uc.Accounts.Profile(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.FromError(c, err)
	}

	view := userView(&profile.User)
	view["user_total_ball"] = profile.UserTotalBall
	return utils.Success(c, fiber.StatusOK, view)
}
