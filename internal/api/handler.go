package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mpetrov/chatbot-api/internal/auth"
	"github.com/mpetrov/chatbot-api/internal/chat"
	"github.com/mpetrov/chatbot-api/internal/db"
)

type Handler struct {
	usecases *chat.UseCases
	logger   *zap.Logger
}

func NewHandler(usecases *chat.UseCases, logger *zap.Logger) *Handler {
	return &Handler{usecases: usecases, logger: logger}
}

// Register mounts all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Post("/api/auth/register", h.HandleRegister)
	app.Post("/api/auth/login", h.HandleLogin)

	app.Post("/api/chat/create", h.HandleCreateConversation)
	app.Get("/api/chat/conversations", h.HandleListConversations)
	app.Get("/api/chat/:conversationId/messages", h.HandleListMessages)
	app.Post("/api/chat/:conversationId", h.HandleChat)
}

// Response is the envelope every endpoint replies with.
type Response struct {
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	StatusCode int         `json:"statusCode"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return respond(c, fiber.StatusBadRequest, "name, email and password are required", nil)
	}

	userID, err := h.usecases.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Registered", userID)
}

func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	token, err := h.usecases.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Success", LoginResponse{Token: token})
}

func (h *Handler) HandleCreateConversation(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return respond(c, fiber.StatusBadRequest, "Query parameter 'name' is required", nil)
	}

	conversationID, err := h.usecases.CreateConversation(c.Context(), bearerToken(c), name)
	if err != nil {
		return h.fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Created", conversationID)
}

func (h *Handler) HandleListConversations(c *fiber.Ctx) error {
	conversations, err := h.usecases.ListConversations(c.Context(), bearerToken(c))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "Success", conversations)
}

func (h *Handler) HandleListMessages(c *fiber.Ctx) error {
	conversationID, err := strconv.ParseInt(c.Params("conversationId"), 10, 64)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid conversation ID", nil)
	}

	messages, err := h.usecases.ListMessages(c.Context(), bearerToken(c), conversationID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "Success", messages)
}

// HandleChat sends one message: the raw request body is the prompt.
func (h *Handler) HandleChat(c *fiber.Ctx) error {
	conversationID, err := strconv.ParseInt(c.Params("conversationId"), 10, 64)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid conversation ID", nil)
	}

	prompt := string(c.Body())
	if prompt == "" {
		return respond(c, fiber.StatusBadRequest, "Prompt must not be empty", nil)
	}

	reply, err := h.usecases.SendMessage(c.Context(), bearerToken(c), conversationID, prompt)
	if err != nil {
		return h.fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Success", reply)
}

// fail maps a use-case error to a status code. The mapping is driven by
// error identity, never by matching on message text.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, chat.ErrInvalidCredentials):
		status = fiber.StatusForbidden
	case errors.Is(err, db.ErrEmailInUse):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()))
		return respond(c, status, "Internal server error", nil)
	}

	return respond(c, status, err.Error(), nil)
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Message:    message,
		Data:       data,
		StatusCode: status,
	})
}

// bearerToken extracts the token from the Authorization header. A missing
// or malformed header yields an empty string, which fails decoding.
func bearerToken(c *fiber.Ctx) string {
	return strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
}
