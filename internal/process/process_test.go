package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/config"
	"github.com/zulandar/processmap/internal/db"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/opt"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	admin     Actor
	viewer    Actor
	section   *models.Section
	component *models.Component
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))

	admin := models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
	viewer := models.User{Email: "viewer@example.com", Name: "Viewer", Role: models.RoleViewer}
	require.NoError(t, gormDB.Create(&admin).Error)
	require.NoError(t, gormDB.Create(&viewer).Error)

	f := &fixture{
		db:     gormDB,
		admin:  Actor{UserID: admin.ID, Role: admin.Role},
		viewer: Actor{UserID: viewer.ID, Role: viewer.Role},
	}
	ctx := context.Background()
	f.section, err = CreateSection(ctx, gormDB, f.admin, CreateSectionOpts{Name: "Sales"})
	require.NoError(t, err)
	f.component, err = CreateComponent(ctx, gormDB, f.admin, CreateComponentOpts{
		Title:     "Qualify lead",
		SectionID: f.section.ID,
		OwnerID:   admin.ID,
	})
	require.NoError(t, err)
	return f
}

func logsFor(t *testing.T, gormDB *gorm.DB, entityID string) []models.ActivityLog {
	t.Helper()
	var logs []models.ActivityLog
	require.NoError(t, gormDB.Where("entity_id = ?", entityID).Order("created_at ASC").Find(&logs).Error)
	return logs
}

func actions(logs []models.ActivityLog) []string {
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.Action
	}
	return out
}

func changesOf(t *testing.T, l models.ActivityLog) map[string]any {
	t.Helper()
	c, err := activity.DecodeChanges(l.Changes)
	require.NoError(t, err)
	return c
}

func countRows(t *testing.T, gormDB *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gormDB.Model(model).Count(&n).Error)
	return n
}

func TestActor_Authorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	before := countRows(t, f.db, &models.ActivityLog{})

	_, err := CreateTodo(ctx, f.db, Actor{}, CreateTodoOpts{ComponentID: f.component.ID, Title: "x"})
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))

	_, err = CreateTodo(ctx, f.db, f.viewer, CreateTodoOpts{ComponentID: f.component.ID, Title: "x"})
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "VIEWER")

	err = DeleteComponent(ctx, f.db, f.viewer, f.component.ID)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	assert.Equal(t, int64(0), countRows(t, f.db, &models.Todo{}))
	assert.Equal(t, before, countRows(t, f.db, &models.ActivityLog{}))
}

func TestCreateSection_OrderCollision(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	zero := 0
	_, err := CreateSection(ctx, f.db, f.admin, CreateSectionOpts{Name: "Dup", Order: &zero})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Section{}))

	next, err := CreateSection(ctx, f.db, f.admin, CreateSectionOpts{Name: "Delivery"})
	require.NoError(t, err)
	assert.Equal(t, 1, next.Order)

	logs := logsFor(t, f.db, next.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, activity.EntitySection, logs[0].EntityType)
	c := changesOf(t, logs[0])
	assert.Equal(t, "Delivery", c["name"])
	assert.EqualValues(t, 1, c["order"])
}

func TestDeleteSection_RefusedWithComponents(t *testing.T) {
	f := setup(t)
	err := DeleteSection(context.Background(), f.db, f.admin, f.section.ID)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Section{}))
}

func TestCreateComponent_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := CreateComponent(ctx, f.db, f.admin, CreateComponentOpts{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "sectionId")

	_, err = CreateComponent(ctx, f.db, f.admin, CreateComponentOpts{Title: "x", SectionID: "missing", OwnerID: f.admin.UserID})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	assert.Equal(t, models.HealthGray, f.component.HealthStatus)
}

func TestUpdateComponent_EmptyPatchWritesNothing(t *testing.T) {
	f := setup(t)
	before := len(logsFor(t, f.db, f.component.ID))

	got, err := UpdateComponent(context.Background(), f.db, f.admin, f.component.ID, ComponentPatch{})
	require.NoError(t, err)
	assert.Equal(t, f.component.Title, got.Title)
	assert.Len(t, logsFor(t, f.db, f.component.ID), before)
}

func TestUpdateComponent_RecordsSuppliedFields(t *testing.T) {
	f := setup(t)
	got, err := UpdateComponent(context.Background(), f.db, f.admin, f.component.ID, ComponentPatch{
		HealthStatus: opt.Of(models.HealthRed),
	})
	require.NoError(t, err)
	assert.Equal(t, models.HealthRed, got.HealthStatus)

	logs := logsFor(t, f.db, f.component.ID)
	last := logs[len(logs)-1]
	assert.Equal(t, activity.ActionUpdated, last.Action)
	assert.Equal(t, map[string]any{"healthStatus": "RED"}, changesOf(t, last))
}

func TestCreateMetric_AutoOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m, err := CreateMetric(ctx, f.db, f.admin, CreateMetricOpts{ComponentID: f.component.ID, Name: "m"})
		require.NoError(t, err)
		assert.Equal(t, i, m.Order)
	}
	m, err := CreateMetric(ctx, f.db, f.admin, CreateMetricOpts{ComponentID: f.component.ID, Name: "fourth"})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Order)

	taken := 1
	_, err = CreateMetric(ctx, f.db, f.admin, CreateMetricOpts{ComponentID: f.component.ID, Name: "dup", Order: &taken})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	metrics, err := ListMetrics(ctx, f.db, f.component.ID)
	require.NoError(t, err)
	assert.Len(t, metrics, 4)
}

func TestUpdateTodo_CompletionLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	todo, err := CreateTodo(ctx, f.db, f.admin, CreateTodoOpts{ComponentID: f.component.ID, Title: "Call back"})
	require.NoError(t, err)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.CompletedAt)

	todo, err = UpdateTodo(ctx, f.db, f.admin, todo.ID, TodoPatch{Completed: opt.Of(true)})
	require.NoError(t, err)
	assert.True(t, todo.Completed)
	assert.NotNil(t, todo.CompletedAt)

	todo, err = UpdateTodo(ctx, f.db, f.admin, todo.ID, TodoPatch{Title: opt.Of("Call back today")})
	require.NoError(t, err)
	assert.NotNil(t, todo.CompletedAt, "unrelated update keeps completedAt")

	todo, err = UpdateTodo(ctx, f.db, f.admin, todo.ID, TodoPatch{Completed: opt.Of(false)})
	require.NoError(t, err)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.CompletedAt)

	logs := logsFor(t, f.db, todo.ID)
	assert.Equal(t, []string{"created", "completed", "updated", "uncompleted"}, actions(logs))
	assert.Contains(t, changesOf(t, logs[1]), "completedAt")
}

func TestCreateTodo_UnknownAssignee(t *testing.T) {
	f := setup(t)
	nobody := "nobody"
	_, err := CreateTodo(context.Background(), f.db, f.admin, CreateTodoOpts{
		ComponentID: f.component.ID, Title: "x", AssigneeID: &nobody,
	})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, int64(0), countRows(t, f.db, &models.Todo{}))
}

func TestUpdateIssue_ResolvedLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	issue, err := CreateIssue(ctx, f.db, f.admin, CreateIssueOpts{ComponentID: f.component.ID, Title: "Slow CRM"})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityP2, issue.Priority)
	assert.Equal(t, models.IssueOpen, issue.Status)
	assert.Equal(t, f.admin.UserID, issue.ReportedByID)

	issue, err = UpdateIssue(ctx, f.db, f.admin, issue.ID, IssuePatch{Status: opt.Of(models.IssueResolved)})
	require.NoError(t, err)
	assert.NotNil(t, issue.ResolvedAt)

	issue, err = UpdateIssue(ctx, f.db, f.admin, issue.ID, IssuePatch{Status: opt.Of(models.IssueInProgress)})
	require.NoError(t, err)
	assert.Nil(t, issue.ResolvedAt)

	logs := logsFor(t, f.db, issue.ID)
	require.Equal(t, []string{"created", "status_changed", "status_changed"}, actions(logs))
	c := changesOf(t, logs[1])
	assert.Equal(t, "OPEN", c["oldStatus"])
	assert.Equal(t, "RESOLVED", c["newStatus"])
	assert.Contains(t, c, "resolvedAt")

	_, err = UpdateIssue(ctx, f.db, f.admin, issue.ID, IssuePatch{Priority: opt.Of(models.Priority("P9"))})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestUpdateIdea_VotesAndImplemented(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	idea, err := CreateIdea(ctx, f.db, f.admin, CreateIdeaOpts{ComponentID: f.component.ID, Title: "Automate"})
	require.NoError(t, err)
	assert.Equal(t, 0, idea.Votes)

	_, err = UpdateIdea(ctx, f.db, f.admin, idea.ID, IdeaPatch{Votes: opt.Of(-1)})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	idea, err = UpdateIdea(ctx, f.db, f.admin, idea.ID, IdeaPatch{Votes: opt.Of(5), Implemented: opt.Of(true)})
	require.NoError(t, err)
	assert.Equal(t, 5, idea.Votes)
	assert.True(t, idea.Implemented)

	assert.Equal(t, []string{"created", "marked_implemented"}, actions(logsFor(t, f.db, idea.ID)))
}

func TestComment_EditPermissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := CreateComment(ctx, f.db, f.viewer, CreateCommentOpts{ComponentID: f.component.ID, Content: "hi"})
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	manager := models.User{Email: "m@example.com", Name: "M", Role: models.RoleManager}
	require.NoError(t, f.db.Create(&manager).Error)
	author := Actor{UserID: manager.ID, Role: manager.Role}

	c, err := CreateComment(ctx, f.db, author, CreateCommentOpts{ComponentID: f.component.ID, Content: "first"})
	require.NoError(t, err)
	require.NotNil(t, c.Author)
	assert.Equal(t, "M", c.Author.Name)

	_, err = UpdateComment(ctx, f.db, f.viewer, c.ID, "hijack")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	_, err = UpdateComment(ctx, f.db, author, c.ID, "  ")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	// An author demoted to viewer can still edit their own comment.
	demoted := Actor{UserID: manager.ID, Role: models.RoleViewer}
	c, err = UpdateComment(ctx, f.db, demoted, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Content)

	require.NoError(t, DeleteComment(ctx, f.db, f.admin, c.ID))
	logs := logsFor(t, f.db, c.ID)
	assert.Equal(t, []string{"created", "updated", "deleted"}, actions(logs))
	assert.Equal(t, "edited", changesOf(t, logs[2])["contentPreview"])
}

func TestComment_PreviewTruncated(t *testing.T) {
	f := setup(t)
	long := make([]byte, 250)
	for i := range long {
		long[i] = 'a'
	}
	c, err := CreateComment(context.Background(), f.db, f.admin, CreateCommentOpts{ComponentID: f.component.ID, Content: string(long)})
	require.NoError(t, err)
	logs := logsFor(t, f.db, c.ID)
	require.Len(t, logs, 1)
	assert.Len(t, changesOf(t, logs[0])["contentPreview"], PreviewLength)
}

func TestDelete_LeavesOneRowAndDetailsGoNil(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	todo, err := CreateTodo(ctx, f.db, f.admin, CreateTodoOpts{ComponentID: f.component.ID, Title: "Gone soon"})
	require.NoError(t, err)
	require.NoError(t, DeleteTodo(ctx, f.db, f.admin, todo.ID))

	err = DeleteTodo(ctx, f.db, f.admin, todo.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	logs := logsFor(t, f.db, todo.ID)
	require.Equal(t, []string{"created", "deleted"}, actions(logs))
	assert.Equal(t, map[string]any{"title": "Gone soon"}, changesOf(t, logs[1]))

	page, err := activity.NewReader(f.db, nil).List(ctx, activity.Query{EntityID: todo.ID, Enrich: true})
	require.NoError(t, err)
	require.Len(t, page.Activities, 2)
	for _, row := range page.Activities {
		assert.Nil(t, row.EntityDetails)
	}
}

func TestDeleteComponent_Cascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other, err := CreateComponent(ctx, f.db, f.admin, CreateComponentOpts{Title: "Close", SectionID: f.section.ID, OwnerID: f.admin.UserID})
	require.NoError(t, err)
	_, err = CreateMetric(ctx, f.db, f.admin, CreateMetricOpts{ComponentID: f.component.ID, Name: "m"})
	require.NoError(t, err)
	_, err = CreateTodo(ctx, f.db, f.admin, CreateTodoOpts{ComponentID: f.component.ID, Title: "t"})
	require.NoError(t, err)
	_, err = CreateIssue(ctx, f.db, f.admin, CreateIssueOpts{ComponentID: f.component.ID, Title: "i"})
	require.NoError(t, err)
	_, err = CreateIdea(ctx, f.db, f.admin, CreateIdeaOpts{ComponentID: f.component.ID, Title: "d"})
	require.NoError(t, err)
	_, err = CreateComment(ctx, f.db, f.admin, CreateCommentOpts{ComponentID: f.component.ID, Content: "c"})
	require.NoError(t, err)
	_, err = CreateConnection(ctx, f.db, f.admin, CreateConnectionOpts{FromComponentID: other.ID, ToComponentID: f.component.ID})
	require.NoError(t, err)

	require.NoError(t, DeleteComponent(ctx, f.db, f.admin, f.component.ID))

	for _, m := range []any{&models.Metric{}, &models.Todo{}, &models.Issue{}, &models.Idea{}, &models.Comment{}, &models.Connection{}} {
		assert.Equal(t, int64(0), countRows(t, f.db, m), "%T should be cascaded", m)
	}
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Component{}))

	var deleted int64
	require.NoError(t, f.db.Model(&models.ActivityLog{}).
		Where("entity_id = ? AND action = ?", f.component.ID, activity.ActionDeleted).Count(&deleted).Error)
	assert.Equal(t, int64(1), deleted)
}

func TestConnection_LoggedAgainstSource(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other, err := CreateComponent(ctx, f.db, f.admin, CreateComponentOpts{Title: "Close", SectionID: f.section.ID, OwnerID: f.admin.UserID})
	require.NoError(t, err)

	_, err = CreateConnection(ctx, f.db, f.admin, CreateConnectionOpts{FromComponentID: f.component.ID, ToComponentID: "missing"})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = CreateConnection(ctx, f.db, f.admin, CreateConnectionOpts{FromComponentID: other.ID, ToComponentID: other.ID})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	conn, err := CreateConnection(ctx, f.db, f.admin, CreateConnectionOpts{FromComponentID: f.component.ID, ToComponentID: other.ID, Label: "qualified leads"})
	require.NoError(t, err)

	conns, err := ListConnections(ctx, f.db, other.ID)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "qualified leads", conns[0].Label)

	require.NoError(t, DeleteConnection(ctx, f.db, f.admin, conn.ID))

	logs := logsFor(t, f.db, f.component.ID)
	assert.Equal(t, []string{"created", "connected", "disconnected"}, actions(logs))
	assert.Equal(t, activity.EntityComponent, logs[1].EntityType)
	assert.Equal(t, other.ID, changesOf(t, logs[1])["toComponentId"])
}

func TestSnapshot_CaptureAndList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := CreateSnapshot(ctx, f.db, f.admin, " ")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	snap, err := CreateSnapshot(ctx, f.db, f.admin, "Q3 baseline")
	require.NoError(t, err)

	logs := logsFor(t, f.db, snap.ID)
	require.Len(t, logs, 1)
	assert.EqualValues(t, 1, changesOf(t, logs[0])["componentCount"])

	list, err := ListSnapshots(ctx, f.db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Data)
	require.NotNil(t, list[0].CreatedBy)
	assert.Equal(t, "Admin", list[0].CreatedBy.Name)

	full, err := GetSnapshot(ctx, f.db, snap.ID)
	require.NoError(t, err)
	data, err := DecodeSnapshot(full)
	require.NoError(t, err)
	require.Len(t, data.Sections, 1)
	require.Len(t, data.Sections[0].Components, 1)
	assert.Equal(t, "Qualify lead", data.Sections[0].Components[0].Title)

	// Later edits do not touch the stored copy.
	_, err = UpdateComponent(ctx, f.db, f.admin, f.component.ID, ComponentPatch{Title: opt.Of("Renamed")})
	require.NoError(t, err)
	full, err = GetSnapshot(ctx, f.db, snap.ID)
	require.NoError(t, err)
	data, err = DecodeSnapshot(full)
	require.NoError(t, err)
	assert.Equal(t, "Qualify lead", data.Sections[0].Components[0].Title)

	_, err = GetSnapshot(ctx, f.db, "missing")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSnapshot_IncludesPeople(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.component.ID

	_, err := CreateTodo(ctx, f.db, f.admin, CreateTodoOpts{ComponentID: cid, Title: "Call back", AssigneeID: ptr(f.admin.UserID)})
	require.NoError(t, err)
	_, err = CreateIssue(ctx, f.db, f.admin, CreateIssueOpts{ComponentID: cid, Title: "Slow CRM"})
	require.NoError(t, err)
	_, err = CreateIdea(ctx, f.db, f.admin, CreateIdeaOpts{ComponentID: cid, Title: "Auto-score"})
	require.NoError(t, err)
	_, err = CreateComment(ctx, f.db, f.admin, CreateCommentOpts{ComponentID: cid, Content: "Looks good"})
	require.NoError(t, err)

	snap, err := CreateSnapshot(ctx, f.db, f.admin, "with people")
	require.NoError(t, err)
	full, err := GetSnapshot(ctx, f.db, snap.ID)
	require.NoError(t, err)
	data, err := DecodeSnapshot(full)
	require.NoError(t, err)

	c := data.Sections[0].Components[0]
	require.Len(t, c.Todos, 1)
	require.NotNil(t, c.Todos[0].Assignee)
	assert.Equal(t, "Admin", c.Todos[0].Assignee.Name)
	require.Len(t, c.Issues, 1)
	require.NotNil(t, c.Issues[0].ReportedBy)
	assert.Equal(t, "Admin", c.Issues[0].ReportedBy.Name)
	require.Len(t, c.Ideas, 1)
	require.NotNil(t, c.Ideas[0].SubmittedBy)
	assert.Equal(t, "Admin", c.Ideas[0].SubmittedBy.Name)
	require.Len(t, c.Comments, 1)
	require.NotNil(t, c.Comments[0].Author)
	assert.Equal(t, "Admin", c.Comments[0].Author.Name)
}

func TestDashboardStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other, err := CreateComponent(ctx, f.db, f.admin, CreateComponentOpts{
		Title: "Close", SectionID: f.section.ID, OwnerID: f.admin.UserID, HealthStatus: models.HealthGreen,
	})
	require.NoError(t, err)
	_, err = CreateTodo(ctx, f.db, f.admin, CreateTodoOpts{ComponentID: other.ID, Title: "t"})
	require.NoError(t, err)
	issue, err := CreateIssue(ctx, f.db, f.admin, CreateIssueOpts{ComponentID: other.ID, Title: "i"})
	require.NoError(t, err)
	_, err = CreateIssue(ctx, f.db, f.admin, CreateIssueOpts{ComponentID: other.ID, Title: "j"})
	require.NoError(t, err)
	_, err = UpdateIssue(ctx, f.db, f.admin, issue.ID, IssuePatch{Status: opt.Of(models.IssueResolved)})
	require.NoError(t, err)

	st, err := DashboardStats(ctx, f.db, activity.NewReader(f.db, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalComponents)
	assert.Equal(t, 75, st.OverallHealth) // (50 + 100) / 2
	assert.Equal(t, 1, st.ComponentsByHealth[models.HealthGreen])
	assert.Equal(t, 1, st.ComponentsByHealth[models.HealthGray])
	assert.Equal(t, int64(1), st.ActiveTodos)
	assert.Equal(t, int64(1), st.OpenIssues)
	assert.Equal(t, int64(0), st.PendingIdeas)
	assert.Len(t, st.RecentActivity, 7)
}

// insertBeforeCreate registers a create callback that writes a competing row
// inside the same transaction just before the first create of a T, so the
// pre-write order check passes but the insert hits the unique index.
func insertBeforeCreate[T any](t *testing.T, gormDB *gorm.DB, stmt func(*T) (string, []any)) *bool {
	t.Helper()
	fired := false
	err := gormDB.Callback().Create().Before("gorm:create").Register("test:competing_insert", func(tx *gorm.DB) {
		dest, ok := tx.Statement.Dest.(*T)
		if !ok || fired {
			return
		}
		fired = true
		sql, args := stmt(dest)
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(sql, args...).Error; err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
	return &fired
}

func TestCreateSection_ConcurrentOrderIsValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()
	fired := insertBeforeCreate(t, f.db, func(s *models.Section) (string, []any) {
		return "INSERT INTO sections (id, name, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			[]any{"competing-section", "Competing", s.Order, now, now}
	})

	order := 5
	_, err := CreateSection(ctx, f.db, f.admin, CreateSectionOpts{Name: "Delivery", Order: &order})
	require.True(t, *fired)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "order 5 already exists")
	assert.EqualValues(t, 1, countRows(t, f.db, &models.Section{}))
}

func TestCreateMetric_ConcurrentOrderIsValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()
	fired := insertBeforeCreate(t, f.db, func(m *models.Metric) (string, []any) {
		return "INSERT INTO metrics (id, component_id, name, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			[]any{"competing-metric", m.ComponentID, "Competing", m.Order, now, now}
	})

	_, err := CreateMetric(ctx, f.db, f.admin, CreateMetricOpts{ComponentID: f.component.ID, Name: "Win rate"})
	require.True(t, *fired)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.EqualValues(t, 0, countRows(t, f.db, &models.Metric{}))
}
