package controllers

import (
	"net/http"

	"pqrssi-portal/middleware"

	"github.com/gin-gonic/gin"
)

// Home renders the landing page with the caller's name and admin flag.
func (ctl *Controller) Home(c *gin.Context) {
	who := middleware.CurrentIdentity(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"LoggedIn": who.LoggedIn,
		"Name":     who.Name,
		"IsAdmin":  who.IsAdmin,
	})
}

func (ctl *Controller) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Register creates the account and sends the user to log in.
func (ctl *Controller) Register(c *gin.Context) {
	_, err := ctl.accounts.Register(c.Request.Context(),
		c.PostForm("nombre"),
		c.PostForm("email"),
		c.PostForm("contraseña"),
	)
	if err != nil {
		respondError(c, err, http.StatusOK)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (ctl *Controller) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Login checks the credentials, opens a session and sets its cookie.
func (ctl *Controller) Login(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := ctl.accounts.Authenticate(ctx, c.PostForm("email"), c.PostForm("contraseña"))
	if err != nil {
		respondError(c, err, http.StatusOK)
		return
	}

	token, err := ctl.sessions.Create(ctx, user.UserID)
	if err != nil {
		respondError(c, err, http.StatusOK)
		return
	}

	middleware.SetSessionCookie(c, token, ctl.sessions.TTL(), ctl.secureCookie)
	c.Redirect(http.StatusFound, "/")
}

// Logout ends the session immediately.
func (ctl *Controller) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := ctl.sessions.Destroy(c.Request.Context(), token); err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "Failed to end session")
			return
		}
	}
	middleware.ClearSessionCookie(c, ctl.secureCookie)
	c.Redirect(http.StatusFound, "/")
}
