package app

import (
	"net/http"
	"path/filepath"

	"todoapi/internal/config"
	"todoapi/internal/handlers"
	"todoapi/internal/middleware"
	"todoapi/internal/service"

	_ "todoapi/docs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, svc *service.TodoService, log logrus.FieldLogger) {
	r.GET("/", indexHandler(cfg.Static.Dir))
	r.Static("/static", cfg.Static.Dir)
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", middleware.MetricsHandler())
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	api := r.Group("/api")
	registerTodoRoutes(api, handlers.NewTodoHandler(svc, log))
}

func indexHandler(staticDir string) gin.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(c *gin.Context) {
		c.File(index)
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.GET("/todos", h.List)
	api.POST("/todos", h.Create)
	api.GET("/todos/:id", h.GetByID)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
}
