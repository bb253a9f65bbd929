package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/infrastructure/database/models"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) List(ctx context.Context, collection string, activeOnly bool) ([]domain.ContentItem, error) {
	query := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("position ASC").
		Order("c_date ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.ContentItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]domain.ContentItem, 0, len(rows))
	for _, row := range rows {
		item, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ContentRepository) Get(ctx context.Context, collection, id string) (domain.ContentItem, error) {
	var row models.ContentItem
	err := r.db.WithContext(ctx).
		First(&row, "collection = ? AND id = ?", collection, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContentItem{}, domain.NotFoundError{Resource: collection}
		}
		return domain.ContentItem{}, err
	}
	return toDomain(row)
}

// Create assigns the next position under a per-collection advisory
// transaction lock, so concurrent creates never collide on position.
func (r *ContentRepository) Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error) {
	fields, err := json.Marshal(item.Fields)
	if err != nil {
		return domain.ContentItem{}, err
	}

	row := models.ContentItem{
		ID:         uuid.NewString(),
		Collection: item.Collection,
		Fields:     string(fields),
		Tags:       item.Tags,
		IsActive:   item.IsActive,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockKey := int64(xxh3.HashString(item.Collection))
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", lockKey).Error; err != nil {
			return err
		}

		var maxPosition int
		err := tx.Model(&models.ContentItem{}).
			Where("collection = ?", item.Collection).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error
		if err != nil {
			return err
		}

		row.Position = maxPosition + 1
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.ContentItem{}, err
	}

	return toDomain(row)
}

func (r *ContentRepository) Update(ctx context.Context, collection, id string, patch domain.ContentPatch) (domain.ContentItem, error) {
	var updated models.ContentItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ContentItem
		if err := tx.First(&row, "collection = ? AND id = ?", collection, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.NotFoundError{Resource: collection}
			}
			return err
		}

		if patch.Fields != nil {
			var merged map[string]any
			if err := json.Unmarshal([]byte(row.Fields), &merged); err != nil {
				return err
			}
			if merged == nil {
				merged = map[string]any{}
			}
			for k, v := range patch.Fields {
				merged[k] = v
			}
			serialized, err := json.Marshal(merged)
			if err != nil {
				return err
			}
			row.Fields = string(serialized)
		}
		if patch.Tags != nil {
			row.Tags = *patch.Tags
		}

		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return domain.ContentItem{}, err
	}
	return toDomain(updated)
}

func (r *ContentRepository) SetActive(ctx context.Context, collection, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("collection = ? AND id = ?", collection, id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: collection}
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, collection, id string) error {
	result := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&models.ContentItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: collection}
	}
	return nil
}

// UpsertSingleton keeps at most one live row per singleton collection, keyed
// by the well-known fixed identifier.
func (r *ContentRepository) UpsertSingleton(ctx context.Context, collection string, fields map[string]any) (domain.ContentItem, error) {
	serialized, err := json.Marshal(fields)
	if err != nil {
		return domain.ContentItem{}, err
	}

	row := models.ContentItem{
		ID:         folio.SingletonID(collection),
		Collection: collection,
		Fields:     string(serialized),
		Position:   1,
		IsActive:   true,
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "is_active", "m_date"}),
	}).Create(&row).Error
	if err != nil {
		return domain.ContentItem{}, err
	}

	return r.Get(ctx, collection, row.ID)
}

func toDomain(row models.ContentItem) (domain.ContentItem, error) {
	fields := map[string]any{}
	if row.Fields != "" {
		if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
			return domain.ContentItem{}, err
		}
	}
	return domain.ContentItem{
		ID:         row.ID,
		Collection: row.Collection,
		Fields:     fields,
		Tags:       row.Tags,
		Position:   row.Position,
		IsActive:   row.IsActive,
		CreatedAt:  row.CDate,
		UpdatedAt:  row.MDate,
	}, nil
}
