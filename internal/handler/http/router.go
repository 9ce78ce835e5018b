package http

import (
	"time"

	"pixelfeed/internal/handler/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Posts     *PostHandler
	Comments  *CommentHandler
	Likes     *LikeHandler
	Assistant *AssistantHandler
	Files     *FileHandler

	Verifier middleware.TokenVerifier

	// AllowedOrigins is the CORS allowlist; empty means same-origin only.
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all routes mounted. Session-protected
// groups sit behind the bearer-token gate; refresh and logout read the
// refresh token themselves and stay outside it.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(h.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authGate := middleware.Auth(h.Verifier)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/google", h.Auth.GoogleSignIn)
		authGroup.GET("/refresh", h.Auth.Refresh)
		authGroup.GET("/logout", h.Auth.Logout)
		authGroup.GET("/profile/:userId", h.Auth.PublicProfile)

		authGroup.GET("/getUserInfo", authGate, h.Auth.UserInfo)
		authGroup.PUT("/update", authGate, h.Auth.UpdateProfile)
		authGroup.PUT("/password", authGate, h.Auth.ChangePassword)
		authGroup.DELETE("/delete", authGate, h.Auth.DeleteAccount)
	}

	postsGroup := router.Group("/posts", authGate)
	{
		postsGroup.POST("", h.Posts.Create)
		postsGroup.GET("/:id", h.Posts.Get)
		postsGroup.PUT("/:id", h.Posts.Update)
		postsGroup.DELETE("/:id", h.Posts.Delete)
		postsGroup.GET("/getByUserId", h.Posts.ByUser)
		postsGroup.GET("/getAllPagination/:page/:limit", h.Posts.Page)
	}

	commentsGroup := router.Group("/comments", authGate)
	{
		commentsGroup.POST("", h.Comments.Create)
		commentsGroup.GET("/:id", h.Comments.Get)
		commentsGroup.PUT("/:id", h.Comments.Update)
		commentsGroup.DELETE("/:id", h.Comments.Delete)
		commentsGroup.GET("/getByPostId/:postId/:page/:limit", h.Comments.ByPost)
		commentsGroup.GET("/getByUserId", h.Comments.ByUser)
	}

	likesGroup := router.Group("/likes", authGate)
	{
		likesGroup.POST("", h.Likes.Create)
		likesGroup.DELETE("/:id", h.Likes.Delete)
		likesGroup.GET("/getByUserId", h.Likes.ByUser)
		likesGroup.GET("/getByUserAndPost", h.Likes.ByUserAndPost)
	}

	router.POST("/ai", authGate, h.Assistant.Suggest)

	if h.Files != nil {
		router.GET("/file/upload-url", authGate, h.Files.UploadURL)
	}

	return router
}
