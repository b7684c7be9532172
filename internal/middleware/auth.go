package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"paywallet/internal/auth"
	apperrors "paywallet/internal/errors"
)

const claimsKey = "user"

var errTokenRevoked = errors.New("token revoked")

// JWTAuth returns middleware that validates a Bearer token from the
// Authorization header and rejects revoked tokens.
func JWTAuth(jwtService *auth.JWTService, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			revoked, err := tokens.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if revoked {
				return nil, errTokenRevoked
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			slog.Debug("rejected session token", "error", err, "path", c.Path())
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Msg: apperrors.MsgUnauthorized})
		},
	})
}

// Claims returns the verified claims stored by JWTAuth.
func Claims(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// UserID extracts the authenticated user ID from the request context.
func UserID(c echo.Context) (uuid.UUID, bool) {
	claims, ok := Claims(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.SubjectID(), true
}
