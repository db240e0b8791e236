package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/logger"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// LookupFunc fetches the minimal display fields of one entity. It returns
// gorm.ErrRecordNotFound when the entity no longer exists.
type LookupFunc func(ctx context.Context, db *gorm.DB, id string) (map[string]any, error)

// Query filters and pages the log. Zero values mean "no filter".
type Query struct {
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	Limit      int
	Offset     int
	Enrich     bool
}

// UserSummary is the acting user as shown next to a log row.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Row is a log entry ready for display.
type Row struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entityType"`
	EntityID      string         `json:"entityId"`
	Changes       datatypes.JSON `json:"changes"`
	CreatedAt     time.Time      `json:"createdAt"`
	User          *UserSummary   `json:"user"`
	EntityDetails map[string]any `json:"entityDetails"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// Page is one page of log rows, newest first.
type Page struct {
	Activities []Row      `json:"activities"`
	Pagination Pagination `json:"pagination"`
}

// Reader serves the log read path. Enrichment lookups are registered per
// entity type; a type without a lookup is returned without details.
type Reader struct {
	db      *gorm.DB
	log     *logger.Logger
	lookups map[string]LookupFunc
}

// NewReader returns a Reader with lookups for every built-in entity type.
func NewReader(db *gorm.DB, log *logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	r := &Reader{db: db, log: log, lookups: make(map[string]LookupFunc)}
	for entityType, fn := range defaultLookups() {
		r.Register(entityType, fn)
	}
	return r
}

// Register installs or replaces the lookup for entityType. Not safe for
// concurrent use with List; register at startup.
func (r *Reader) Register(entityType string, fn LookupFunc) {
	if fn == nil {
		delete(r.lookups, entityType)
		return
	}
	r.lookups[entityType] = fn
}

// normalize clamps limit and offset.
func normalize(q Query) Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// List returns one page of matching rows.
func (r *Reader) List(ctx context.Context, q Query) (*Page, error) {
	if q.EntityType != "" && !ValidEntityType(q.EntityType) {
		return nil, apperr.Validationf("activity: unknown entity type %q", q.EntityType)
	}
	q = normalize(q)

	base := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if q.UserID != "" {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.EntityType != "" {
		base = base.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != "" {
		base = base.Where("entity_id = ?", q.EntityID)
	}
	if q.Action != "" {
		base = base.Where("action = ?", q.Action)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("activity: count: %w", err)
	}

	var logs []models.ActivityLog
	if err := base.Session(&gorm.Session{}).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("activity: list: %w", err)
	}

	rows := make([]Row, len(logs))
	for i, l := range logs {
		rows[i] = Row{
			ID:         l.ID,
			UserID:     l.UserID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Changes:    l.Changes,
			CreatedAt:  l.CreatedAt,
		}
		if l.User != nil {
			rows[i].User = &UserSummary{ID: l.User.ID, Name: l.User.Name, Email: l.User.Email}
		}
		if q.Enrich {
			rows[i].EntityDetails = r.details(ctx, l.EntityType, l.EntityID)
		}
	}

	return &Page{
		Activities: rows,
		Pagination: Pagination{
			Total:   total,
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: int64(q.Offset+len(rows)) < total,
		},
	}, nil
}

// details runs the registered lookup. Failures are logged and yield nil.
func (r *Reader) details(ctx context.Context, entityType, id string) map[string]any {
	fn, ok := r.lookups[entityType]
	if !ok {
		r.log.Warn("activity: no lookup registered", "entity_type", entityType, "entity_id", id)
		return nil
	}
	d, err := fn(ctx, r.db.WithContext(ctx), id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		r.log.Warn("activity: entity no longer exists", "entity_type", entityType, "entity_id", id)
		return nil
	case err != nil:
		r.log.Warn("activity: entity lookup failed", "entity_type", entityType, "entity_id", id, "error", err)
		return nil
	}
	return d
}
