package router

import (
	"net/http"
	"time"

	"appraise-go/internal/config"
	"appraise-go/internal/handlers"
	"appraise-go/internal/models"
	"appraise-go/internal/service"
	"appraise-go/internal/services"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// Services bundles everything the routes need.
type Services struct {
	Types         *service.AssessmentTypeService
	Categories    *service.CategoryService
	Templates     *service.TemplateService
	Questions     *service.QuestionService
	Periods       *service.PeriodService
	Users         *service.UserService
	Instances     *service.InstanceService
	Responses     *service.ResponseService
	Relationships *service.RelationshipService
	Invitations   *service.InvitationService
	MagicLinks    *service.MagicLinkService
	Email         *services.EmailService
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests; try again later"})
}

func Setup(log *zap.Logger, cfg *config.Config, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true behind TLS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("appraise_session", store))
	router.Use(UserLoaderMiddleware(log, svc.Users))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(log, svc.MagicLinks, svc.Email)
	adminHandler := handlers.NewAdminHandler(log, svc.Types, svc.Categories, svc.Templates, svc.Questions, svc.Periods)
	assessmentHandler := handlers.NewAssessmentHandler(log, svc.Instances, svc.Responses)
	invitationHandler := handlers.NewInvitationHandler(log, svc.Invitations, svc.Email)
	relationshipHandler := handlers.NewRelationshipHandler(log, svc.Relationships)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Public: login and invitation acceptance
	auth := router.Group("/auth")
	{
		auth.POST("/magic-link", limiter, authHandler.RequestMagicLink)
		auth.GET("/verify", limiter, authHandler.VerifyMagicLink)
		auth.POST("/logout", authHandler.Logout)
	}
	router.POST("/invitations/:id/accept", limiter, invitationHandler.Accept)
	router.POST("/invitations/decline", invitationHandler.Decline)

	authorized := router.Group("/")
	authorized.Use(AuthRequired())
	{
		assessment := authorized.Group("/instances")
		{
			assessment.GET("/:id", assessmentHandler.GetInstance)
			assessment.PUT("/:id/status", assessmentHandler.UpdateInstanceStatus)
			assessment.POST("/:id/responses", assessmentHandler.CreateResponse)
			assessment.GET("/:id/responses", assessmentHandler.ListResponses)
			assessment.GET("/:id/completion", assessmentHandler.CheckCompletion)
		}
		authorized.PUT("/responses/:id", assessmentHandler.UpdateResponse)

		manager := authorized.Group("/")
		manager.Use(RequireRole(models.RoleManager))
		{
			manager.POST("/invitations", invitationHandler.Create)
			manager.POST("/invitations/:id/remind", invitationHandler.SendReminder)
			manager.GET("/managers/:id/subordinates", relationshipHandler.ListSubordinates)
			manager.GET("/managers/:id/hierarchy", relationshipHandler.GetHierarchy)
			manager.GET("/subordinates/:id/manager", relationshipHandler.GetManager)
		}

		admin := authorized.Group("/admin")
		admin.Use(RequireRole(models.RoleAdmin))
		{
			admin.POST("/types", adminHandler.CreateType)
			admin.GET("/types", adminHandler.ListTypes)
			admin.GET("/types/:id", adminHandler.GetType)
			admin.PUT("/types/:id", adminHandler.UpdateType)
			admin.DELETE("/types/:id", adminHandler.DeleteType)
			admin.GET("/types/:id/categories", adminHandler.ListCategories)
			admin.PUT("/types/:id/categories/reorder", adminHandler.ReorderCategories)

			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			admin.POST("/templates", adminHandler.CreateTemplate)
			admin.GET("/templates", adminHandler.ListActiveTemplates)
			admin.GET("/templates/:id", adminHandler.GetTemplate)
			admin.PUT("/templates/:id", adminHandler.UpdateTemplate)
			admin.DELETE("/templates/:id", adminHandler.DeleteTemplate)
			admin.GET("/templates/:id/questions", adminHandler.ListQuestions)
			admin.PUT("/templates/:id/questions/reorder", adminHandler.ReorderQuestions)

			admin.POST("/questions", adminHandler.CreateQuestion)
			admin.PUT("/questions/:id", adminHandler.UpdateQuestion)
			admin.DELETE("/questions/:id", adminHandler.DeleteQuestion)

			admin.POST("/periods", adminHandler.CreatePeriod)
			admin.GET("/periods", adminHandler.ListActivePeriods)

			admin.POST("/instances", assessmentHandler.CreateInstance)
			admin.DELETE("/instances/:id", assessmentHandler.DeleteInstance)
			admin.POST("/relationships", relationshipHandler.Create)
			admin.DELETE("/relationships/:id", relationshipHandler.Delete)
		}
	}

	return router
}
