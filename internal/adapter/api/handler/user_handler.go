package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"talkapp/internal/domain/repository"
	"talkapp/internal/usecase"
	"talkapp/pkg/response"
	"talkapp/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
	chatUseCase *usecase.ChatUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase, chatUseCase *usecase.ChatUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		chatUseCase: chatUseCase,
	}
}

type registerProfileRequest struct {
	Name           string `json:"name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Age            int    `json:"age" validate:"required,min=13,max=120"`
	Country        string `json:"country" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	NativeLanguage string `json:"native_language" validate:"required"`
	LanguageLevel  string `json:"language_level" validate:"required,oneof=beginner intermediate advanced native"`
}

type updateProfileRequest struct {
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Age            int    `json:"age" validate:"omitempty,min=13,max=120"`
	Country        string `json:"country"`
	Gender         string `json:"gender"`
	NativeLanguage string `json:"native_language"`
	LanguageLevel  string `json:"language_level" validate:"omitempty,oneof=beginner intermediate advanced native"`
}

type presenceRequest struct {
	IsOnline bool `json:"is_online"`
}

type rateUserRequest struct {
	Rating int `json:"rating" validate:"min=0,max=100"`
}

func (h *UserHandler) RegisterProfile(c echo.Context) error {
	var req registerProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.RegisterProfile(c.Request().Context(), userID, usecase.RegisterProfileInput{
		Name:           req.Name,
		LastName:       req.LastName,
		Age:            req.Age,
		Country:        req.Country,
		Gender:         req.Gender,
		NativeLanguage: req.NativeLanguage,
		LanguageLevel:  req.LanguageLevel,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userUseCase.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// CheckUserExists backs the client's navigate-away probe; it never errors
func (h *UserHandler) CheckUserExists(c echo.Context) error {
	exists := h.chatUseCase.CheckUserExists(c.Request().Context(), c.Param("id"))

	return response.Success(c, map[string]bool{"exists": exists})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		Name:           req.Name,
		LastName:       req.LastName,
		Age:            req.Age,
		Country:        req.Country,
		Gender:         req.Gender,
		NativeLanguage: req.NativeLanguage,
		LanguageLevel:  req.LanguageLevel,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) SetPresence(c echo.Context) error {
	var req presenceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.userUseCase.SetPresence(c.Request().Context(), userID, req.IsOnline); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// BrowsePartners lists potential partners with optional profile filters
func (h *UserHandler) BrowsePartners(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	filter := repository.UserFilter{
		Country:        c.QueryParam("country"),
		Gender:         c.QueryParam("gender"),
		NativeLanguage: c.QueryParam("native_language"),
		LanguageLevel:  c.QueryParam("language_level"),
	}

	users, total, err := h.userUseCase.BrowsePartners(c.Request().Context(), userID, filter, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, users, total, params.PageSize, params.Offset)
}

func (h *UserHandler) AddFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.userUseCase.AddFavorite(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) RemoveFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.userUseCase.RemoveFavorite(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) ListFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)

	favorites, err := h.userUseCase.ListFavorites(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, favorites)
}

func (h *UserHandler) RateUser(c echo.Context) error {
	var req rateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.userUseCase.RateUser(c.Request().Context(), userID, c.Param("id"), req.Rating); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) DeleteAccount(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.userUseCase.DeleteAccount(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
