package dashboard

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/process"
	"gorm.io/gorm"
)

func (s *server) handleMe(c *gin.Context) {
	var u models.User
	err := s.db.WithContext(c.Request.Context()).Where("id = ?", actorFrom(c).UserID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.respondError(c, apperr.Unauthenticatedf("user no longer exists"))
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, u)
}

func (s *server) handleDashboard(c *gin.Context) {
	st, err := process.DashboardStats(c.Request.Context(), s.db, s.reader)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, st)
}

func (s *server) handleProcessMap(c *gin.Context) {
	pm, err := loadProcessMap(c.Request.Context(), s.db)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, pm)
}

// Sections.

func (s *server) handleListSections(c *gin.Context) {
	sections, err := process.ListSections(c.Request.Context(), s.db)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]sectionView, len(sections))
	for i, sec := range sections {
		out[i] = sectionViewOf(sec)
	}
	respondOK(c, out)
}

func (s *server) handleGetSection(c *gin.Context) {
	sec, err := process.GetSection(c.Request.Context(), s.db, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, sectionViewOf(*sec))
}

func (s *server) handleCreateSection(c *gin.Context) {
	var in process.CreateSectionOpts
	if !s.bind(c, &in) {
		return
	}
	sec, err := process.CreateSection(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, sec)
}

func (s *server) handleUpdateSection(c *gin.Context) {
	var in process.SectionPatch
	if !s.bind(c, &in) {
		return
	}
	sec, err := process.UpdateSection(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, sec)
}

func (s *server) handleDeleteSection(c *gin.Context) {
	if err := process.DeleteSection(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Components.

func (s *server) handleListComponents(c *gin.Context) {
	components, err := process.ListComponents(c.Request.Context(), s.db, process.ComponentFilters{
		SectionID:    c.Query("sectionId"),
		HealthStatus: models.HealthStatus(c.Query("healthStatus")),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, viewsOf(components))
}

func (s *server) handleGetComponent(c *gin.Context) {
	comp, err := process.GetComponent(c.Request.Context(), s.db, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, viewOf(*comp))
}

func (s *server) handleComponentHealth(c *gin.Context) {
	h, err := componentHealth(c.Request.Context(), s.db, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, h)
}

func (s *server) handleCreateComponent(c *gin.Context) {
	var in process.CreateComponentOpts
	if !s.bind(c, &in) {
		return
	}
	comp, err := process.CreateComponent(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, comp)
}

func (s *server) handleUpdateComponent(c *gin.Context) {
	var in process.ComponentPatch
	if !s.bind(c, &in) {
		return
	}
	comp, err := process.UpdateComponent(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, comp)
}

func (s *server) handleDeleteComponent(c *gin.Context) {
	if err := process.DeleteComponent(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Metrics.

func (s *server) handleListMetrics(c *gin.Context) {
	metrics, err := process.ListMetrics(c.Request.Context(), s.db, c.Query("componentId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, metrics)
}

func (s *server) handleCreateMetric(c *gin.Context) {
	var in process.CreateMetricOpts
	if !s.bind(c, &in) {
		return
	}
	m, err := process.CreateMetric(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, m)
}

func (s *server) handleUpdateMetric(c *gin.Context) {
	var in process.MetricPatch
	if !s.bind(c, &in) {
		return
	}
	m, err := process.UpdateMetric(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, m)
}

func (s *server) handleDeleteMetric(c *gin.Context) {
	if err := process.DeleteMetric(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Todos.

func (s *server) handleListTodos(c *gin.Context) {
	completed, err := queryBool(c, "completed")
	if err != nil {
		s.respondError(c, err)
		return
	}
	todos, err := process.ListTodos(c.Request.Context(), s.db, process.TodoFilters{
		ComponentID: c.Query("componentId"),
		Completed:   completed,
		AssigneeID:  c.Query("assigneeId"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, todos)
}

func (s *server) handleCreateTodo(c *gin.Context) {
	var in process.CreateTodoOpts
	if !s.bind(c, &in) {
		return
	}
	t, err := process.CreateTodo(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, t)
}

func (s *server) handleUpdateTodo(c *gin.Context) {
	var in process.TodoPatch
	if !s.bind(c, &in) {
		return
	}
	t, err := process.UpdateTodo(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, t)
}

func (s *server) handleDeleteTodo(c *gin.Context) {
	if err := process.DeleteTodo(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Issues.

func (s *server) handleListIssues(c *gin.Context) {
	issues, err := process.ListIssues(c.Request.Context(), s.db, process.IssueFilters{
		ComponentID: c.Query("componentId"),
		Status:      models.IssueStatus(c.Query("status")),
		Priority:    models.Priority(c.Query("priority")),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, issues)
}

func (s *server) handleCreateIssue(c *gin.Context) {
	var in process.CreateIssueOpts
	if !s.bind(c, &in) {
		return
	}
	i, err := process.CreateIssue(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, i)
}

func (s *server) handleUpdateIssue(c *gin.Context) {
	var in process.IssuePatch
	if !s.bind(c, &in) {
		return
	}
	i, err := process.UpdateIssue(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, i)
}

func (s *server) handleDeleteIssue(c *gin.Context) {
	if err := process.DeleteIssue(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Ideas.

func (s *server) handleListIdeas(c *gin.Context) {
	implemented, err := queryBool(c, "implemented")
	if err != nil {
		s.respondError(c, err)
		return
	}
	ideas, err := process.ListIdeas(c.Request.Context(), s.db, process.IdeaFilters{
		ComponentID: c.Query("componentId"),
		Implemented: implemented,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, ideas)
}

func (s *server) handleCreateIdea(c *gin.Context) {
	var in process.CreateIdeaOpts
	if !s.bind(c, &in) {
		return
	}
	i, err := process.CreateIdea(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, i)
}

func (s *server) handleUpdateIdea(c *gin.Context) {
	var in process.IdeaPatch
	if !s.bind(c, &in) {
		return
	}
	i, err := process.UpdateIdea(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, i)
}

func (s *server) handleDeleteIdea(c *gin.Context) {
	if err := process.DeleteIdea(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Comments.

func (s *server) handleListComments(c *gin.Context) {
	comments, err := process.ListComments(c.Request.Context(), s.db, c.Query("componentId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, comments)
}

func (s *server) handleCreateComment(c *gin.Context) {
	var in process.CreateCommentOpts
	if !s.bind(c, &in) {
		return
	}
	cm, err := process.CreateComment(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, cm)
}

func (s *server) handleUpdateComment(c *gin.Context) {
	var in struct {
		Content string `json:"content"`
	}
	if !s.bind(c, &in) {
		return
	}
	cm, err := process.UpdateComment(c.Request.Context(), s.db, actorFrom(c), c.Param("id"), in.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, cm)
}

func (s *server) handleDeleteComment(c *gin.Context) {
	if err := process.DeleteComment(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Connections.

func (s *server) handleListConnections(c *gin.Context) {
	conns, err := process.ListConnections(c.Request.Context(), s.db, c.Query("componentId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, conns)
}

func (s *server) handleCreateConnection(c *gin.Context) {
	var in process.CreateConnectionOpts
	if !s.bind(c, &in) {
		return
	}
	conn, err := process.CreateConnection(c.Request.Context(), s.db, actorFrom(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, conn)
}

func (s *server) handleDeleteConnection(c *gin.Context) {
	if err := process.DeleteConnection(c.Request.Context(), s.db, actorFrom(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// Snapshots.

func (s *server) handleListSnapshots(c *gin.Context) {
	snaps, err := process.ListSnapshots(c.Request.Context(), s.db)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, snaps)
}

func (s *server) handleCreateSnapshot(c *gin.Context) {
	var in struct {
		Name string `json:"name"`
	}
	if !s.bind(c, &in) {
		return
	}
	snap, err := process.CreateSnapshot(c.Request.Context(), s.db, actorFrom(c), in.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, snap)
}

func (s *server) handleGetSnapshot(c *gin.Context) {
	snap, err := process.GetSnapshot(c.Request.Context(), s.db, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, snap)
}

// Activity.

func (s *server) handleListActivity(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		s.respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		s.respondError(c, err)
		return
	}
	enrich, err := queryBool(c, "enrich")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if limit < 0 || offset < 0 {
		s.respondError(c, apperr.Validationf("limit and offset must be non-negative"))
		return
	}
	page, err := s.reader.List(c.Request.Context(), activity.Query{
		UserID:     c.Query("userId"),
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
		Action:     c.Query("action"),
		Limit:      limit,
		Offset:     offset,
		Enrich:     enrich == nil || *enrich,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, page)
}
