package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

type CatalogController struct {
	Cfg     *config.Config
	Catalog *services.CatalogService
}

func NewCatalogController(cfg *config.Config, catalog *services.CatalogService) *CatalogController {
	return &CatalogController{Cfg: cfg, Catalog: catalog}
}

func (cc *CatalogController) ListCategories(c *fiber.Ctx) error {
	categories, err := cc.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return utils.FromError(c, err)
	}

	result := make([]fiber.Map, 0, len(categories))
	for i := range categories {
		result = append(result, categoryView(cc.Cfg.MediaHost, &categories[i]))
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// ViewCategory counts a visit and returns the category's subjects.
func (cc *CatalogController) ViewCategory(c *fiber.Ctx) error {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid category ID")
	}

	category, err := cc.Catalog.ViewCategory(c.UserContext(), categoryID)
	if err != nil {
		return utils.FromError(c, err)
	}

	subjects := make([]fiber.Map, 0, len(category.Subjects))
	for i := range category.Subjects {
		subjects = append(subjects, subjectView(cc.Cfg.MediaHost, &category.Subjects[i]))
	}
	view := categoryView(cc.Cfg.MediaHost, category)
	view["subjects"] = subjects
	return utils.Success(c, fiber.StatusOK, view)
}

func (cc *CatalogController) ListSubjects(c *fiber.Ctx) error {
	subjects, err := cc.Catalog.ListSubjects(c.UserContext(), c.Query("search"))
	if err != nil {
		return utils.FromError(c, err)
	}

	result := make([]fiber.Map, 0, len(subjects))
	for i := range subjects {
		result = append(result, subjectView(cc.Cfg.MediaHost, &subjects[i]))
	}
	return utils.Success(c, fiber.StatusOK, result)
}

func (cc *CatalogController) GetSubject(c *fiber.Ctx) error {
	subjectID, ok := parseID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	subject, err := cc.Catalog.GetSubject(c.UserContext(), subjectID)
	if err != nil {
		return utils.FromError(c, err)
	}

	steps := make([]fiber.Map, 0, len(subject.Steps))
	for i := range subject.Steps {
		steps = append(steps, stepSummaryView(&subject.Steps[i]))
	}
	view := subjectView(cc.Cfg.MediaHost, subject)
	view["steps"] = steps
	return utils.Success(c, fiber.StatusOK, view)
}
