package api

import (
	"errors"
	"net/http"

	reqdto "salon-booking-api/internal/handler/dto/request"
	resdto "salon-booking-api/internal/handler/dto/response"
	"salon-booking-api/internal/handler/middleware"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/pkg/cookie"
	"salon-booking-api/internal/pkg/jwt"
	"salon-booking-api/internal/usecase"
	"salon-booking-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase  usecase.AuthUseCase
	staffQueries queries.StaffQueries
	cookieCfg    config.CookieConfig
	jwtService   *jwt.Service
}

func NewAuthHandler(
	authUseCase usecase.AuthUseCase,
	staffQueries queries.StaffQueries,
	cookieCfg config.CookieConfig,
	jwtService *jwt.Service,
) *AuthHandler {
	return &AuthHandler{
		authUseCase:  authUseCase,
		staffQueries: staffQueries,
		cookieCfg:    cookieCfg,
		jwtService:   jwtService,
	}
}

// @Summary Staff login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	credentials, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	token, staffView, err := h.authUseCase.Login(c.Request.Context(), credentials)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	cookie.SetAccessToken(c, h.cookieCfg, token, h.jwtService.TokenDuration())

	response := resdto.LoginResponse{
		AccessToken: token,
		Staff:       staffView,
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Staff logout
// @Description Clear the session cookie
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie.ClearAccessToken(c, h.cookieCfg)
	c.Status(http.StatusNoContent)
}

// @Summary Get current staff member
// @Description Get the authenticated staff member
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} queries.StaffView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	staffID, ok := middleware.GetStaffID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Staff member not authenticated",
		})
		return
	}

	staffView, err := h.staffQueries.GetCurrentStaff(c.Request.Context(), staffID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrStaffNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Staff member not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, staffView)
}
