package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	controllers "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/controllers"
	middleware "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))
	r.POST("/auth/refresh", controllers.RefreshToken(cfg))

	// public registration pages (no auth, slug-addressed)
	r.GET("/public/program/:slug", controllers.GetPublicProgram(cfg))
	r.POST("/public/register/:slug", controllers.RegisterPublic(cfg))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("", controllers.ListUsers(cfg))
		users.GET("/:id", controllers.GetUser(cfg))
		users.PATCH("/:id", controllers.UpdateUser(cfg))
		users.DELETE("/:id", controllers.DeleteUser(cfg))
	}

	departments := r.Group("/departments")
	departments.Use(auth)
	{
		departments.POST("", controllers.CreateDepartment(cfg))
		departments.GET("", controllers.ListDepartments(cfg))
		departments.GET("/:id", controllers.GetDepartment(cfg))
		departments.PATCH("/:id", controllers.UpdateDepartment(cfg))
		departments.DELETE("/:id", controllers.DeleteDepartment(cfg))
	}

	programs := r.Group("/programs")
	programs.Use(auth)
	{
		programs.POST("", controllers.CreateProgram(cfg))
		programs.GET("", controllers.ListPrograms(cfg))
		programs.GET("/:id", controllers.GetProgram(cfg))
		programs.PATCH("/:id", controllers.UpdateProgram(cfg))
		programs.DELETE("/:id", controllers.DeleteProgram(cfg))

		programs.POST("/:id/status", controllers.SetProgramStatus(cfg))
		programs.POST("/:id/versions", controllers.CreateProgramVersion(cfg))
		programs.GET("/:id/versions", controllers.ListProgramVersions(cfg))
		programs.POST("/:id/updates", controllers.AddProgramUpdate(cfg))
		programs.PATCH("/:id/registration", controllers.UpdateRegistrationSettings(cfg))

		programs.GET("/:id/participants", controllers.ListParticipants(cfg))
		programs.POST("/:id/participants", controllers.AddParticipant(cfg))
		programs.POST("/:id/participants/import", controllers.ImportParticipants(cfg))
		programs.GET("/:id/participants/export", controllers.ExportParticipants(cfg))
		programs.DELETE("/:id/participants/:participantId", controllers.RemoveParticipant(cfg))
	}

	broadcast := r.Group("/broadcast")
	broadcast.Use(auth)
	{
		broadcast.POST("", controllers.SendBroadcast(cfg))
		broadcast.GET("", controllers.ListBroadcasts(cfg))
	}

	dashboard := r.Group("/dashboard")
	dashboard.Use(auth)
	{
		dashboard.GET("", controllers.GetDashboard(cfg))
	}
}
