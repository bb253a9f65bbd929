package usecase

import (
	"context"
	"errors"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/schemas"
)

// ContentRepository defines persistence for ordered content collections.
type ContentRepository interface {
	List(ctx context.Context, collection string, activeOnly bool) ([]domain.ContentItem, error)
	Get(ctx context.Context, collection, id string) (domain.ContentItem, error)
	Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error)
	Update(ctx context.Context, collection, id string, patch domain.ContentPatch) (domain.ContentItem, error)
	SetActive(ctx context.Context, collection, id string, active bool) error
	Delete(ctx context.Context, collection, id string) error
	UpsertSingleton(ctx context.Context, collection string, fields map[string]any) (domain.ContentItem, error)
}

// Revalidator signals that public paths showing a collection are stale.
type Revalidator interface {
	ContentChanged(ctx context.Context, eventType, collection, itemID string)
}

// CreateInput is the typed command decoded from an admin create submission.
type CreateInput struct {
	Collection string
	Fields     map[string]any
	Tags       []string
	IsActive   *bool
}

type ContentUsecase struct {
	repo       ContentRepository
	revalidate Revalidator
}

func NewContentUsecase(repo ContentRepository, revalidate Revalidator) *ContentUsecase {
	return &ContentUsecase{repo: repo, revalidate: revalidate}
}

func (uc *ContentUsecase) List(ctx context.Context, collection string, activeOnly bool) ([]domain.ContentItem, error) {
	if _, ok := schemas.Lookup(collection); !ok {
		return nil, domain.NotFoundError{Resource: "collection"}
	}
	return uc.repo.List(ctx, collection, activeOnly)
}

func (uc *ContentUsecase) Get(ctx context.Context, collection, id string) (domain.ContentItem, error) {
	if _, ok := schemas.Lookup(collection); !ok {
		return domain.ContentItem{}, domain.NotFoundError{Resource: "collection"}
	}
	return uc.repo.Get(ctx, collection, id)
}

func (uc *ContentUsecase) Create(ctx context.Context, input CreateInput) (domain.ContentItem, error) {
	schema, ok := schemas.Lookup(input.Collection)
	if !ok {
		return domain.ContentItem{}, domain.NotFoundError{Resource: "collection"}
	}
	if schema.Singleton {
		return domain.ContentItem{}, domain.ValidationError{Reason: "singleton collections use upsert"}
	}
	if err := schema.Validate(input.Fields); err != nil {
		return domain.ContentItem{}, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	created, err := uc.repo.Create(ctx, domain.ContentItem{
		Collection: input.Collection,
		Fields:     input.Fields,
		Tags:       input.Tags,
		IsActive:   isActive,
	})
	if err != nil {
		return domain.ContentItem{}, err
	}

	uc.revalidate.ContentChanged(ctx, folio.EventTypeContentCreated, input.Collection, created.ID)
	return created, nil
}

func (uc *ContentUsecase) Update(ctx context.Context, collection, id string, patch domain.ContentPatch) (domain.ContentItem, error) {
	schema, ok := schemas.Lookup(collection)
	if !ok {
		return domain.ContentItem{}, domain.NotFoundError{Resource: "collection"}
	}
	// partial fields only need per-field checks, not required-ness.
	for name, value := range patch.Fields {
		probe := map[string]any{name: value}
		hasField := false
		for _, f := range schema.Fields {
			if f.Name == name {
				hasField = true
				if err := (schemas.Collection{Fields: []schemas.Field{f}}).Validate(probe); err != nil {
					return domain.ContentItem{}, err
				}
			}
		}
		if !hasField {
			return domain.ContentItem{}, domain.ValidationError{Field: name, Reason: "unknown field"}
		}
	}

	updated, err := uc.repo.Update(ctx, collection, id, patch)
	if err != nil {
		return domain.ContentItem{}, err
	}

	uc.revalidate.ContentChanged(ctx, folio.EventTypeContentUpdated, collection, id)
	return updated, nil
}

// Toggle inverts the caller-supplied presumed current state. Optimistic;
// concurrent toggles resolve last-writer-wins.
func (uc *ContentUsecase) Toggle(ctx context.Context, collection, id string, currentIsActive bool) error {
	if _, ok := schemas.Lookup(collection); !ok {
		return domain.NotFoundError{Resource: "collection"}
	}
	if err := uc.repo.SetActive(ctx, collection, id, !currentIsActive); err != nil {
		return err
	}
	uc.revalidate.ContentChanged(ctx, folio.EventTypeContentToggled, collection, id)
	return nil
}

// Delete is idempotent from the caller's perspective: a retry of an already
// deleted id succeeds.
func (uc *ContentUsecase) Delete(ctx context.Context, collection, id string) error {
	if _, ok := schemas.Lookup(collection); !ok {
		return domain.NotFoundError{Resource: "collection"}
	}
	err := uc.repo.Delete(ctx, collection, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	uc.revalidate.ContentChanged(ctx, folio.EventTypeContentDeleted, collection, id)
	return nil
}

func (uc *ContentUsecase) UpsertSingleton(ctx context.Context, collection string, fields map[string]any) (domain.ContentItem, error) {
	schema, ok := schemas.Lookup(collection)
	if !ok || !schema.Singleton {
		return domain.ContentItem{}, domain.NotFoundError{Resource: "collection"}
	}
	if err := schema.Validate(fields); err != nil {
		return domain.ContentItem{}, err
	}

	item, err := uc.repo.UpsertSingleton(ctx, collection, fields)
	if err != nil {
		return domain.ContentItem{}, err
	}

	uc.revalidate.ContentChanged(ctx, folio.EventTypeContentUpdated, collection, item.ID)
	return item, nil
}
