package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"stepwise/backend/utils"
)

// parseID reads a positive numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindAndValidate parses the JSON body into req and runs its validate tags.
// It writes the error response itself and reports whether the handler
// should go on.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return false, utils.ValidationError(c, fields)
	}
	return true, nil
}
