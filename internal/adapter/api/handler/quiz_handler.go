package handler

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/domain/repository"
	"talkapp/internal/usecase"
	"talkapp/pkg/response"
	"talkapp/pkg/utils"
)

type QuizHandler struct {
	quizUseCase *usecase.QuizUseCase
}

func NewQuizHandler(quizUseCase *usecase.QuizUseCase) *QuizHandler {
	return &QuizHandler{
		quizUseCase: quizUseCase,
	}
}

type submitQuizRequest struct {
	Answers   map[string]string `json:"answers" validate:"required"`
	TimeSpent int               `json:"time_spent" validate:"min=0"`
}

func (h *QuizHandler) ListQuizzes(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	filter := repository.QuizFilter{
		Category:   c.QueryParam("category"),
		Difficulty: c.QueryParam("difficulty"),
	}

	quizzes, total, err := h.quizUseCase.ListQuizzes(c.Request().Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, quizzes, total, params.PageSize, params.Offset)
}

func (h *QuizHandler) GetQuiz(c echo.Context) error {
	quiz, err := h.quizUseCase.GetQuiz(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, quiz)
}

func (h *QuizHandler) SubmitQuiz(c echo.Context) error {
	var req submitQuizRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	result, err := h.quizUseCase.SubmitQuiz(c.Request().Context(), userID, usecase.SubmitQuizInput{
		QuizID:    c.Param("id"),
		Answers:   req.Answers,
		TimeSpent: req.TimeSpent,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *QuizHandler) ListMyResults(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	results, total, err := h.quizUseCase.ListResults(c.Request().Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, results, total, params.PageSize, params.Offset)
}
