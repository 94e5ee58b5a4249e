package controller

import (
	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPreferenceController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Destroy(ctx *fiber.Ctx) error
}

type preferenceController struct {
	service service.IPreferenceService
}

func NewPreferenceController(service service.IPreferenceService) IPreferenceController {
	return &preferenceController{service: service}
}

func (c *preferenceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/preferences")
	h.Get("/:userId", c.Show)
	h.Put("/:userId", c.Update)
	h.Delete("/:userId", c.Destroy)
}

func (c *preferenceController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get preferences", res))
}

func (c *preferenceController) Update(ctx *fiber.Ctx) error {
	var req dto.PreferencesDTO
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.UserContext(), ctx.Params("userId"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save preferences", res))
}

func (c *preferenceController) Destroy(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("userId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete preferences", nil))
}
