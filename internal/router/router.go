package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/internal/handlers"
	"github.com/teamtodo-dev/teamtodo/internal/middleware"
	"github.com/teamtodo-dev/teamtodo/internal/types"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
)

func NewRouter(hub *ws.Hub) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	teamHandler := handlers.NewTeamHandler(hub)
	todoHandler := handlers.NewTodoHandler(hub)
	wsHandler := handlers.NewWSHandler(hub)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), wsHandler.Serve)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := api.Group("/users")
		{
			users.POST("", handlers.CreateUser)
			users.GET("", middleware.AuthMiddleware(), handlers.ListUsers)
			users.PUT("/profile", middleware.AuthMiddleware(), handlers.UpdateProfile)
			users.GET("/:id", middleware.AuthMiddleware(), handlers.GetUser)
			users.PUT("/:id", middleware.AuthMiddleware(), handlers.UpdateUser)
			users.DELETE("/:id", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		teams := api.Group("/teams", middleware.AuthMiddleware())
		{
			teams.POST("", teamHandler.Create)
			teams.GET("", teamHandler.List)
			teams.GET("/my-teams", teamHandler.MyTeams)
			teams.GET("/:id", teamHandler.Get)
			teams.PUT("/:id", teamHandler.Update)
			teams.DELETE("/:id", teamHandler.Delete)
			teams.POST("/:id/members", teamHandler.AddMember)
			teams.DELETE("/:id/members/:memberId", teamHandler.RemoveMember)
		}

		todos := api.Group("/todos", middleware.AuthMiddleware())
		{
			todos.POST("", todoHandler.Create)
			todos.GET("", todoHandler.List)
			todos.GET("/my-todos", todoHandler.MyTodos)
			todos.GET("/team/:teamId", todoHandler.ByTeam)
			todos.GET("/status/:status", todoHandler.ByStatus)
			todos.GET("/overdue", todoHandler.Overdue)
			todos.GET("/:id", todoHandler.Get)
			todos.PUT("/:id", todoHandler.Update)
			todos.DELETE("/:id", todoHandler.Delete)
			todos.PUT("/:id/assign/:assigneeId", todoHandler.Assign)
			todos.PUT("/:id/status/:status", todoHandler.UpdateStatus)
		}

		ai := api.Group("/ai", middleware.AuthMiddleware())
		{
			ai.POST("/suggest-due-date", handlers.SuggestDueDate)
			ai.POST("/analyze-task", handlers.AnalyzeTask)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.PUT("/:id/read", handlers.MarkNotificationRead)
		}
	}

	return r
}
