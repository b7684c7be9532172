package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "paywallet/internal/errors"
	"paywallet/internal/middleware"
	"paywallet/internal/service"
	"paywallet/internal/validate"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username  string `json:"username" validate:"required,email,min=3,max=30"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
}

// SigninRequest represents a user login request.
type SigninRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Msg   string `json:"msg"`
	Token string `json:"token"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// Signup godoc
// @Summary Register a new user
// @Description Creates the user and its account with a random opening balance.
// @Tags user
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 411 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return invalidInputs(http.StatusBadRequest)
	}
	req.Username = validate.NormalizeUsername(req.Username)
	req.FirstName = validate.NormalizeName(req.FirstName)
	req.LastName = validate.NormalizeName(req.LastName)

	if err := c.Validate(&req); err != nil {
		return invalidInputs(http.StatusBadRequest)
	}

	token, _, err := h.authService.Signup(c.Request().Context(), service.SignupInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Msg: "User created successfully", Token: token})
}

// Signin godoc
// @Summary Login user
// @Tags user
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 411 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return invalidInputs(apperrors.StatusRejected)
	}
	req.Username = validate.NormalizeUsername(req.Username)

	if err := c.Validate(&req); err != nil {
		return invalidInputs(apperrors.StatusRejected)
	}

	token, err := h.authService.Signin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Msg: "Logged in successfully", Token: token})
}

// Signout godoc
// @Summary Revoke the presented session token
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signout [post]
func (h *AuthHandler) Signout(c echo.Context) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return unauthorized()
	}

	if err := h.authService.Signout(c.Request().Context(), claims); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Msg: "Signed out successfully"})
}

func invalidInputs(status int) *echo.HTTPError {
	return echo.NewHTTPError(status, apperrors.ErrorResponse{Msg: apperrors.MsgInvalidInputs})
}

func unauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Msg: apperrors.MsgUnauthorized})
}

// handleServiceError maps a service error to its HTTP response and logs
// anything unexpected.
func handleServiceError(c echo.Context, err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
