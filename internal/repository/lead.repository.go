package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/pg"
)

type LeadRepository struct {
	*pg.DB
}

func NewLeadRepository(db *pg.DB) *LeadRepository {
	return &LeadRepository{
		db,
	}
}

// Create stores a lead, assigning a time-ordered id when it has none.
func (r *LeadRepository) Create(ctx context.Context, l *model.Lead) (*model.Lead, error) {
	entity := toLeadEntity(l)
	if entity.ID == "" {
		entity.ID = uuid.Must(uuid.NewV7()).String()
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toLeadModel(entity), nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*model.Lead, error) {
	var entity LeadEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return toLeadModel(&entity), nil
}

func (r *LeadRepository) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	q := r.Read(ctx).Model(&LeadEntity{})

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.Source != nil {
		q = q.Where("source = ?", string(*f.Source))
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", string(*f.Priority))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := containsPattern(strings.ToLower(s))
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, like, like)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := page(f.Limit, f.Offset)

	var entities []*LeadEntity
	if err := q.Order(orderBy("created_at", f.Desc)).Order("id ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toLeadModels(entities), total, nil
}

// UpdateStatus moves a lead to status. A non-nil contactedAt is recorded as
// the last contact time.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status model.LeadStatus, contactedAt *time.Time, now time.Time) error {
	updates := map[string]any{
		"status":     string(status),
		"updated_at": now,
	}
	if contactedAt != nil {
		updates["last_contact_at"] = *contactedAt
	}
	return r.update(ctx, id, updates)
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id string, score int, priority model.LeadPriority, now time.Time) error {
	return r.update(ctx, id, map[string]any{
		"score":      score,
		"priority":   string(priority),
		"updated_at": now,
	})
}

func (r *LeadRepository) update(ctx context.Context, id string, updates map[string]any) error {
	result := r.Write(ctx).Model(&LeadEntity{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}
