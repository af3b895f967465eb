package v1

import (
	"net/http"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/config"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/middleware"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/response"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/domain"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/usecase"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	Audit     *security.SecurityLogger
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins, deps.Config.GinMode)) // CORS must be first!
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery(deps.Config.FallbackContactEmail, deps.Audit))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.Config.FallbackContactEmail))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	// Public routes
	NewContactHandler(v1, deps.ContactUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
