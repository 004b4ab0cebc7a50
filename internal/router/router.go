package router

import (
	"quill/internal/handlers"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps holds what the routes are built from.
type Deps struct {
	DB        *gorm.DB
	Users     *services.UserService
	Posts     *services.PostService
	Comments  *services.CommentService
	Responder handlers.Responder
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Users, d.Responder)
	userHandler := handlers.NewUserHandler(d.Users, d.Responder)
	postHandler := handlers.NewPostHandler(d.Posts, d.Responder)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Responder)
	healthHandler := handlers.NewHealthHandler(d.DB)

	r.GET("/health", healthHandler.Check)

	api := r.Group("/api/v1")
	api.Use(middleware.LoadUser(d.Users))
	requireAuth := middleware.AuthRequired()

	users := api.Group("/users")
	{
		users.POST("/sign-up", authHandler.SignUp)
		users.POST("/sign-in", authHandler.SignIn)
		users.POST("/logout", requireAuth, authHandler.Logout)
		users.PATCH("/update", requireAuth, userHandler.Update)
		users.DELETE("/delete", requireAuth, userHandler.Delete)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.POST("", requireAuth, middleware.RequireRole(models.RoleAuthor), postHandler.Create)
		posts.GET("/liked-posts", requireAuth, postHandler.Liked)
		posts.GET("/:id", postHandler.Detail)
		posts.PATCH("/:id", requireAuth, postHandler.Update)
		posts.DELETE("/:id", requireAuth, postHandler.Delete)

		posts.PATCH("/:id/likes", requireAuth, postHandler.Like)
		posts.DELETE("/:id/likes", requireAuth, postHandler.Unlike)
		posts.PATCH("/:id/dislikes", requireAuth, postHandler.Dislike)
		posts.DELETE("/:id/dislikes", requireAuth, postHandler.Undislike)
	}

	comments := api.Group("/post-comments")
	{
		comments.GET("/user-liked-comments", requireAuth, commentHandler.Liked)

		comments.GET("/:postId/comments", commentHandler.List)
		comments.POST("/:postId/comments", requireAuth, commentHandler.Create)
		comments.GET("/:postId/comments/:id", commentHandler.Detail)
		comments.PATCH("/:postId/comments/:id", requireAuth, commentHandler.Update)
		comments.DELETE("/:postId/comments/:id", requireAuth, commentHandler.Delete)

		comments.GET("/:postId/comments/:id/replies", commentHandler.Replies)
		comments.POST("/:postId/comments/:id/replies", requireAuth, commentHandler.Reply)
		comments.DELETE("/:postId/comments/:id/replies/:replyId", requireAuth, commentHandler.DeleteReply)

		comments.PATCH("/:postId/comments/:id/likes", requireAuth, commentHandler.Like)
		comments.DELETE("/:postId/comments/:id/likes", requireAuth, commentHandler.Unlike)
		comments.PATCH("/:postId/comments/:id/dislikes", requireAuth, commentHandler.Dislike)
		comments.DELETE("/:postId/comments/:id/dislikes", requireAuth, commentHandler.Undislike)
	}
}
