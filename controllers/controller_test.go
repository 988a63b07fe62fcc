package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"pqrssi-portal/services"
	"pqrssi-portal/utils"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		status     int
		wantCode   int
		wantBody   string
		wantTarget string
	}{
		{"policy on form", services.ErrPasswordPolicy, http.StatusOK, http.StatusOK, utils.PasswordPolicyMessage, ""},
		{"duplicate email", services.ErrEmailTaken, http.StatusOK, http.StatusOK, "Email is already registered", ""},
		{"wrapped category", fmt.Errorf("category 9: %w", services.ErrUnknownCategory), http.StatusBadRequest, http.StatusBadRequest, "Unknown category", ""},
		{"forbidden", services.ErrForbidden, http.StatusBadRequest, http.StatusFound, "", "/login"},
		{"unauthenticated", services.ErrUnauthenticated, http.StatusBadRequest, http.StatusFound, "", "/login"},
		{"no history", services.ErrHistoryNotFound, http.StatusBadRequest, http.StatusNotFound, "History not found", ""},
		{"store failure", errors.New("connection reset"), http.StatusBadRequest, http.StatusInternalServerError, "Server error", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tc.err, tc.status)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantTarget != "" {
				assert.Equal(t, tc.wantTarget, w.Header().Get("Location"))
				return
			}
			assert.Equal(t, tc.wantBody, w.Body.String())
		})
	}
}
