package handler

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/usecase"
	"talkapp/pkg/response"
)

type AIHandler struct {
	aiUseCase *usecase.AIChatUseCase
}

func NewAIHandler(aiUseCase *usecase.AIChatUseCase) *AIHandler {
	return &AIHandler{
		aiUseCase: aiUseCase,
	}
}

type aiExchangeRequest struct {
	Message string `json:"message" validate:"required"`
}

func (h *AIHandler) Exchange(c echo.Context) error {
	var req aiExchangeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	reply, err := h.aiUseCase.Exchange(c.Request().Context(), userID, req.Message)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reply)
}
