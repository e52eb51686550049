//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salon-booking-api/internal/domain/staff"
	"salon-booking-api/internal/handler/api"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/pkg/jwt"
	"salon-booking-api/internal/usecase"
	"salon-booking-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type stubAuthUseCase struct {
	token    string
	staff    *queries.StaffView
	loginErr error
}

func (s *stubAuthUseCase) Login(_ context.Context, _ staff.Credentials) (string, *queries.StaffView, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.token, s.staff, nil
}

type stubStaffQueries struct {
	view *queries.StaffView
	err  error
}

func (s *stubStaffQueries) GetCurrentStaff(_ context.Context, _ uuid.UUID) (*queries.StaffView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

type AuthHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	authUseCase  *stubAuthUseCase
	staffQueries *stubStaffQueries
	staffID      uuid.UUID
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.staffID = uuid.New()
	s.authUseCase = &stubAuthUseCase{}
	s.staffQueries = &stubStaffQueries{}
	handler := api.NewAuthHandler(s.authUseCase, s.staffQueries, config.CookieConfig{}, jwt.NewService("test-secret", time.Hour))

	s.router.POST("/auth/login", handler.Login)
	s.router.POST("/auth/logout", handler.Logout)
	s.router.GET("/auth/me", func(c *gin.Context) {
		if c.Query("anonymous") == "" {
			c.Set("staff_id", s.staffID)
		}
	}, handler.Me)
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) perform(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"
	body := map[string]any{"email": "owner@salon.example", "password": "password123"}

	s.Run("success: returns a token and sets the session cookie", func() {
		s.authUseCase.token = "signed-token"
		s.authUseCase.staff = &queries.StaffView{ID: s.staffID, Email: "owner@salon.example", Role: "admin"}
		rec := s.perform(http.MethodPost, url, body)

		s.Equal(http.StatusOK, rec.Code)
		var response map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
		s.Equal("signed-token", response["access_token"])
		s.NotEmpty(rec.Header().Get("Set-Cookie"))
	})

	s.Run("error: 400 for a malformed email", func() {
		rec := s.perform(http.MethodPost, url, map[string]any{"email": "not-an-email", "password": "password123"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 400 for a short password", func() {
		rec := s.perform(http.MethodPost, url, map[string]any{"email": "owner@salon.example", "password": "short"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 401 for wrong credentials", func() {
		s.authUseCase.loginErr = usecase.ErrInvalidCredentials
		rec := s.perform(http.MethodPost, url, body)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.authUseCase.loginErr = nil
	})
}

func (s *AuthHandlerTestSuite) TestLogout() {
	rec := s.perform(http.MethodPost, "/auth/logout", nil)
	s.Equal(http.StatusNoContent, rec.Code)
	s.NotEmpty(rec.Header().Get("Set-Cookie"))
}

func (s *AuthHandlerTestSuite) TestMe() {
	s.Run("success: returns the authenticated staff member", func() {
		s.staffQueries.view = &queries.StaffView{ID: s.staffID, Email: "owner@salon.example", Role: "admin"}
		rec := s.perform(http.MethodGet, "/auth/me", nil)

		s.Equal(http.StatusOK, rec.Code)
		var view queries.StaffView
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &view))
		s.Equal(s.staffID, view.ID)
	})

	s.Run("error: 401 without an authenticated staff id", func() {
		rec := s.perform(http.MethodGet, "/auth/me?anonymous=1", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("error: 404 when the staff row is gone", func() {
		s.staffQueries.err = queries.ErrStaffNotFound
		rec := s.perform(http.MethodGet, "/auth/me", nil)
		s.Equal(http.StatusNotFound, rec.Code)
		s.staffQueries.err = nil
	})
}
