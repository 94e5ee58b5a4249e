package controller

import (
	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFoodController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type foodController struct {
	service service.IFoodService
}

func NewFoodController(service service.IFoodService) IFoodController {
	return &foodController{service: service}
}

func (c *foodController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/foods")
	h.Get("/search", c.Search)
	h.Get("/:id", c.Show)
	h.Post("", c.Create)
}

func (c *foodController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchFoodRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search food", res))
}

func (c *foodController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get food", res))
}

func (c *foodController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateFoodRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Food item queued for indexing", res))
}
