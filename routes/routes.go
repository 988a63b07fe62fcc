package routes

import (
	"pqrssi-portal/controllers"
	"pqrssi-portal/middleware"
	"pqrssi-portal/monitor"

	"github.com/gin-gonic/gin"
)

// Deps is what the route table needs from main.
type Deps struct {
	Controller   *controllers.Controller
	Sessions     middleware.SessionResolver
	DB           monitor.Pinger
	LogFile      string
	SecureCookie bool
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	ctl := deps.Controller

	// Health check
	if deps.DB != nil {
		monitor.RegisterHealthRoute(router, deps.DB)
	}

	pages := router.Group("")
	pages.Use(middleware.SessionMiddleware(deps.Sessions, deps.SecureCookie))
	{
		// Public pages
		pages.GET("/", ctl.Home)
		pages.GET("/register", ctl.RegisterForm)
		pages.POST("/register", ctl.Register)
		pages.GET("/login", ctl.LoginForm)
		pages.POST("/login", ctl.Login)
		pages.GET("/logout", ctl.Logout)

		// Logged-in users
		user := pages.Group("")
		user.Use(middleware.RequireLogin())
		{
			user.GET("/submit", ctl.SubmitForm)
			user.POST("/submit", ctl.Submit)
			user.GET("/view", ctl.ViewOwn)
			user.GET("/historial/:id", ctl.History)
		}

		// Administrators
		admin := pages.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("", ctl.AdminDashboard)
			admin.POST("/change-status", ctl.ChangeStatus)
			if deps.LogFile != "" {
				monitor.RegisterLogsRoute(admin, "/logs", deps.LogFile)
			}
		}
	}
}
