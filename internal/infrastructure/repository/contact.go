package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/infrastructure/database/models"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, sub domain.ContactSubmission) (domain.ContactSubmission, error) {
	row := models.ContactSubmission{
		ID:      uuid.NewString(),
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
		Consent: sub.Consent,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.ContactSubmission{}, err
	}
	return contactToDomain(row), nil
}

func (r *ContactRepository) List(ctx context.Context) ([]domain.ContactSubmission, error) {
	var rows []models.ContactSubmission
	err := r.db.WithContext(ctx).
		Order("c_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	subs := make([]domain.ContactSubmission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, contactToDomain(row))
	}
	return subs, nil
}

func (r *ContactRepository) SetRead(ctx context.Context, id string, read bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContactSubmission{}).
		Where("id = ?", id).
		Update("is_read", read)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "contact submission"}
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ContactSubmission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "contact submission"}
	}
	return nil
}

func contactToDomain(row models.ContactSubmission) domain.ContactSubmission {
	return domain.ContactSubmission{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Subject:   row.Subject,
		Message:   row.Message,
		Consent:   row.Consent,
		IsRead:    row.IsRead,
		CreatedAt: row.CDate,
	}
}
