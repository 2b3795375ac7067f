// file: routes/router.go
package routes

import (
	"NebulaCTF/controllers"
	"NebulaCTF/middlewares"
	"NebulaCTF/models"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	apiV1 := r.Group("/api/v1")
	{
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", controllers.Register)
			usersPublic.POST("/login", controllers.Login)
		}
		usersAuth := apiV1.Group("/users")
		usersAuth.Use(middlewares.JWTAuthMiddleware())
		{
			usersAuth.GET("/:id", controllers.GetUserDetail)
			usersAuth.PUT("/:id", controllers.UpdateUser)
		}

		teamRoutes := apiV1.Group("/teams")
		{
			teamRoutes.GET("/:id", controllers.GetTeamDetail)
			teamRoutes.GET("/:id/solves", controllers.GetTeamSolves)
			teamRoutes.GET("/:id/history", controllers.GetTeamHistory)

			teamAuth := teamRoutes.Use(middlewares.JWTAuthMiddleware())
			teamAuth.POST("", controllers.CreateTeam)
			teamAuth.POST("/join", controllers.JoinTeam)
			teamAuth.POST("/leave", controllers.LeaveTeam)
			teamAuth.DELETE("/:id", controllers.DisbandTeam)
			teamAuth.DELETE("/:id/members/:user_id", controllers.KickMember)
			teamAuth.PUT("/:id", controllers.UpdateTeam)
		}

		challengeRoutes := apiV1.Group("/challenges")
		challengeRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			challengeRoutes.GET("", controllers.ListChallenges)
			challengeRoutes.GET("/:id", controllers.GetChallengeDetail)
			challengeRoutes.POST("/:id/submit", controllers.SubmitFlag)
			challengeRoutes.GET("/:id/hints", controllers.ListChallengeHints)
		}

		hintRoutes := apiV1.Group("/hints")
		hintRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			hintRoutes.POST("/:hint_id/purchase", controllers.PurchaseHint)
		}

		// Read-only, safe to poll.
		apiV1.GET("/scoreboard", controllers.GetScoreboard)
		apiV1.GET("/solves/feed", controllers.GetSolveFeed)
		apiV1.GET("/competition/status", controllers.GetCompetitionStatus)

		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.POST("/ingest", controllers.TriggerIngest)
			adminRoutes.POST("/teams/:id/adjust", controllers.AdjustTeamScore)
			adminRoutes.GET("/flag-logs", controllers.GetFlagLogs)
			adminRoutes.PUT("/flag-logs/:id/suspect", controllers.MarkSuspectSubmission)

			adminRoutes.GET("/users", controllers.GetUserList)
			adminRoutes.DELETE("/users/:id", controllers.DeleteUser)
			adminRoutes.PUT("/users/:id/status", controllers.UpdateUserStatus)
			adminRoutes.PUT("/users/:id/role", middlewares.RoleAuthMiddleware(models.RoleRootAdmin), controllers.UpdateUserRole)
		}
	}

	return r
}
