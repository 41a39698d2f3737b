package v1

import (
	"go-contact-backend/config"
	"go-contact-backend/internal/delivery/http/middleware"
	"go-contact-backend/internal/delivery/http/response"
	"go-contact-backend/internal/domain"
	"go-contact-backend/internal/usecase"
	"go-contact-backend/pkg/upload"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	Uploads   *upload.Store
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.CORSAllowedOrigin)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/health", healthHandler(deps.HealthUC))

	// Public routes
	NewContactHandler(&r.RouterGroup, deps.ContactUC, deps.Uploads)

	// Swagger
	r.GET("/swagger/*any", middleware.DocsCSP(), ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Everything else is looked up in the upload directory
	r.NoRoute(middleware.StaticFiles(deps.Uploads.Dir()))

	return r
}

// healthHandler godoc
// @Summary      Health Check
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health [get]
func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", healthUC.Check(c.Request.Context()))
	}
}
