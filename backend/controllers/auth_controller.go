package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

type AuthController struct {
	Cfg      *config.Config
	Accounts *services.AccountService
}

func NewAuthController(cfg *config.Config, accounts *services.AccountService) *AuthController {
	return &AuthController{Cfg: cfg, Accounts: accounts}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /account/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := ac.Accounts.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return utils.FromError(c, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.FromError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"token": token,
		"user":  userView(user),
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /account/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := ac.Accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return utils.FromError(c, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.FromError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  userView(user),
	})
}
