package usecase

import (
	"context"
	"time"

	"github.com/folio-sh/folio"
)

// VisitRepository defines the visit counter storage.
type VisitRepository interface {
	Record(ctx context.Context, at time.Time) error
	Stats(ctx context.Context, at time.Time) (folio.VisitStats, error)
}

type VisitUsecase struct {
	repo VisitRepository
	now  func() time.Time
}

func NewVisitUsecase(repo VisitRepository) *VisitUsecase {
	return &VisitUsecase{repo: repo, now: time.Now}
}

func (uc *VisitUsecase) Record(ctx context.Context) error {
	return uc.repo.Record(ctx, uc.now())
}

func (uc *VisitUsecase) Stats(ctx context.Context) (folio.VisitStats, error) {
	return uc.repo.Stats(ctx, uc.now())
}
