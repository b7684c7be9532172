package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "paywallet/internal/errors"
	"paywallet/internal/middleware"
	"paywallet/internal/model"
	"paywallet/internal/service"
	"paywallet/internal/validate"
)

// UserHandler bundles profile and directory handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateRequest lists the optional profile fields.
type UpdateRequest struct {
	Password  *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
}

// BulkResponse wraps the directory search result.
type BulkResponse struct {
	User []model.User `json:"user"`
}

// Update godoc
// @Summary Update the caller's profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateRequest true "Fields to overwrite"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 411 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router / [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return unauthorized()
	}

	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidInputs(apperrors.StatusRejected)
	}
	if req.FirstName != nil {
		trimmed := validate.NormalizeName(*req.FirstName)
		req.FirstName = &trimmed
	}
	if req.LastName != nil {
		trimmed := validate.NormalizeName(*req.LastName)
		req.LastName = &trimmed
	}
	if err := c.Validate(&req); err != nil {
		return invalidInputs(apperrors.StatusRejected)
	}

	err := h.svc.Update(c.Request().Context(), id, service.UpdateInput{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Msg: "Updated successfully"})
}

// Info godoc
// @Summary Get the caller's profile and balance
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserInfo
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /info [get]
func (h *UserHandler) Info(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return unauthorized()
	}

	info, err := h.svc.Info(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// Delete godoc
// @Summary Delete the caller's user and account
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router / [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return unauthorized()
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Msg: "User Deleted Successfully!"})
}

// Bulk godoc
// @Summary Search users by name fragment
// @Tags user
// @Produce json
// @Param filter query string false "Case-sensitive fragment of first or last name"
// @Success 200 {object} BulkResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /bulk [get]
func (h *UserHandler) Bulk(c echo.Context) error {
	users, err := h.svc.Search(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, BulkResponse{User: users})
}
