package controller

import (
	"errors"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/dto"
	"healthassist-be/internal/pkg/serverutils"
	"healthassist-be/internal/service"
	"healthassist-be/pkg/conversation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service service.IChatbotService
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Post("", c.CreateSession)
	h.Get("", c.ListSessions)
	h.Get(":id/messages", c.GetMessages)
	h.Post(":id/messages", c.SendMessage)
	h.Delete(":id", c.DeleteSession)
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	res, err := c.service.CreateSession(ctx.UserContext(), serverutils.Owner(ctx), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *chatbotController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.UserContext(), serverutils.Owner(ctx))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *chatbotController) GetMessages(ctx *fiber.Ctx) error {
	res, err := c.service.GetMessages(ctx.UserContext(), serverutils.Owner(ctx), sessionIdParam(ctx))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *chatbotController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if len(ctx.Body()) > 0 {
		// An unparsable body is reported the same way as a missing message
		_ = ctx.BodyParser(&req)
	}

	res, err := c.service.SendMessage(ctx.UserContext(), serverutils.Owner(ctx), sessionIdParam(ctx), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteSession(ctx.UserContext(), serverutils.Owner(ctx), sessionIdParam(ctx))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

// sessionIdParam copies the path id; fiber reuses the request buffer and the id
// outlives the request as a store and lock key.
func sessionIdParam(ctx *fiber.Ctx) string {
	return utils.CopyString(ctx.Params("id"))
}

// writeError maps conversation errors to responses; anything else goes to
// ErrorHandlerMiddleware.
func writeError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, conversation.ErrUnauthenticated):
		return ctx.Status(fiber.StatusOK).JSON(dto.UnauthenticatedResponse{
			Authenticated: false,
			Error:         constant.UnauthenticatedMessage,
		})
	case errors.Is(err, conversation.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, constant.SessionNotFound))
	case errors.Is(err, conversation.ErrNoMessageProvided):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, constant.NoMessageProvided))
	case errors.Is(err, conversation.ErrSessionConflict):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(fiber.StatusConflict, err.Error()))
	default:
		return err
	}
}
