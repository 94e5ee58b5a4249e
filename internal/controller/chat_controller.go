package controller

import (
	"bufio"
	"context"
	"errors"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/internal/service"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/rag/retriever"
	"food-rag-be/pkg/sse"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/stream", c.Stream)
	h.Post("", c.Complete)
	h.Get("/sessions/:id/messages", c.History)
}

func parseChatRequest(ctx *fiber.Ctx) (dto.ChatRequest, error) {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return req, err
	}
	return req, nil
}

// Stream answers with an event stream. Validation problems are still plain
// JSON errors since no event has been written yet.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	req, err := parseChatRequest(ctx)
	if err != nil {
		return err
	}
	sessionId := service.EnsureSessionID(&req)

	ctx.Set(fiber.HeaderContentType, sse.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")
	ctx.Set("X-Session-Id", sessionId)

	// The fiber context is recycled once the handler returns; the stream
	// writer only keeps the trace carried by the user context.
	streamCtx := context.WithoutCancel(ctx.UserContext())
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		c.service.Stream(streamCtx, req, service.TransportSSE, sse.NewWriter(w))
	})
	return nil
}

func (c *chatController) Complete(ctx *fiber.Ctx) error {
	req, err := parseChatRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Complete(ctx.UserContext(), req)
	if err != nil {
		return completionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate reply", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func completionError(err error) error {
	switch {
	case errors.Is(err, retriever.ErrRetrievalTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, "retrieval timed out")
	case errors.Is(err, llm.ErrGeneration):
		return fiber.NewError(fiber.StatusBadGateway, "generation failed")
	default:
		return err
	}
}
