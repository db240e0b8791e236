package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api", s.requireAuth())

	api.GET("/me", s.handleMe)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/process-map", s.handleProcessMap)

	api.GET("/sections", s.handleListSections)
	api.POST("/sections", s.handleCreateSection)
	api.GET("/sections/:id", s.handleGetSection)
	api.PATCH("/sections/:id", s.handleUpdateSection)
	api.DELETE("/sections/:id", s.handleDeleteSection)

	api.GET("/components", s.handleListComponents)
	api.POST("/components", s.handleCreateComponent)
	api.GET("/components/:id", s.handleGetComponent)
	api.GET("/components/:id/health", s.handleComponentHealth)
	api.PATCH("/components/:id", s.handleUpdateComponent)
	api.DELETE("/components/:id", s.handleDeleteComponent)

	api.GET("/metrics", s.handleListMetrics)
	api.POST("/metrics", s.handleCreateMetric)
	api.PATCH("/metrics/:id", s.handleUpdateMetric)
	api.DELETE("/metrics/:id", s.handleDeleteMetric)

	api.GET("/todos", s.handleListTodos)
	api.POST("/todos", s.handleCreateTodo)
	api.PATCH("/todos/:id", s.handleUpdateTodo)
	api.DELETE("/todos/:id", s.handleDeleteTodo)

	api.GET("/issues", s.handleListIssues)
	api.POST("/issues", s.handleCreateIssue)
	api.PATCH("/issues/:id", s.handleUpdateIssue)
	api.DELETE("/issues/:id", s.handleDeleteIssue)

	api.GET("/ideas", s.handleListIdeas)
	api.POST("/ideas", s.handleCreateIdea)
	api.PATCH("/ideas/:id", s.handleUpdateIdea)
	api.DELETE("/ideas/:id", s.handleDeleteIdea)

	api.GET("/comments", s.handleListComments)
	api.POST("/comments", s.handleCreateComment)
	api.PATCH("/comments/:id", s.handleUpdateComment)
	api.DELETE("/comments/:id", s.handleDeleteComment)

	api.GET("/connections", s.handleListConnections)
	api.POST("/connections", s.handleCreateConnection)
	api.DELETE("/connections/:id", s.handleDeleteConnection)

	api.GET("/snapshots", s.handleListSnapshots)
	api.POST("/snapshots", s.handleCreateSnapshot)
	api.GET("/snapshots/:id", s.handleGetSnapshot)

	api.GET("/activity", s.handleListActivity)
	api.GET("/activity/stream", s.handleActivityStream)
}
