package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pqrssi-portal/config"
	"pqrssi-portal/middleware"
	"pqrssi-portal/models"
	"pqrssi-portal/services"
	"pqrssi-portal/utils"

	"github.com/gin-gonic/gin"
)

// Accounts is the part of services.AuthService the web layer uses.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Sessions is the part of services.SessionService the web layer uses.
type Sessions interface {
	Create(ctx context.Context, userID int) (string, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

// Requests is the lifecycle manager as seen by the web layer.
type Requests interface {
	Submit(ctx context.Context, who services.Identity, reqType, description string, categoryID int) (int, error)
	ChangeStatus(ctx context.Context, who services.Identity, requestID, newStatusID int, comment string) error
	ViewHistory(ctx context.Context, who services.Identity, requestID int) ([]models.HistoryView, error)
	ViewOwnRequests(ctx context.Context, who services.Identity) ([]models.RequestSummary, error)
	ViewAllRequests(ctx context.Context, who services.Identity) ([]models.Request, error)
	Workflow() *services.Workflow
}

// Catalog lists the reference data shown in forms.
type Catalog interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Statuses(ctx context.Context) ([]models.Status, error)
}

// Controller holds the page handlers.
type Controller struct {
	accounts     Accounts
	sessions     Sessions
	requests     Requests
	catalog      Catalog
	secureCookie bool
}

func NewController(accounts Accounts, sessions Sessions, requests Requests, catalog Catalog, secureCookie bool) *Controller {
	return &Controller{
		accounts:     accounts,
		sessions:     sessions,
		requests:     requests,
		catalog:      catalog,
		secureCookie: secureCookie,
	}
}

// userMessage is the plain-text answer for errors the caller can fix.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrPasswordPolicy):
		return utils.PasswordPolicyMessage, true
	case errors.Is(err, services.ErrEmailTaken):
		return "Email is already registered", true
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found!", true
	case errors.Is(err, services.ErrWrongPassword):
		return "Incorrect password!", true
	case errors.Is(err, services.ErrUnknownCategory):
		return "Unknown category", true
	case errors.Is(err, services.ErrUnknownStatus):
		return "Unknown status", true
	case errors.Is(err, services.ErrTransitionNotAllowed):
		return "Status change not allowed", true
	case errors.Is(err, services.ErrInvalidInput):
		return "Invalid input", true
	}
	return "", false
}

// respondError maps a service error onto the HTTP response. Validation
// failures answer with validationStatus, which is 200 on the register and
// login forms and 400 elsewhere.
func respondError(c *gin.Context, err error, validationStatus int) {
	if msg, ok := userMessage(err); ok {
		c.String(validationStatus, msg)
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrForbidden):
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, services.ErrHistoryNotFound):
		c.String(http.StatusNotFound, "History not found")
	case errors.Is(err, services.ErrRequestNotFound):
		c.String(http.StatusNotFound, "Request not found")
	default:
		event := config.Logger.Error().Err(err).Str("route", c.FullPath())
		if who := middleware.CurrentIdentity(c); who.LoggedIn {
			event = event.Int("user_id", who.UserID)
		}
		event.Msg("request failed")
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Server error")
	}
}
