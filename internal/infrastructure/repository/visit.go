package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
)

// VisitRepository counts visits in redis: one global counter plus one
// counter per server-local day.
type VisitRepository struct {
	rdb *redis.Client
	loc *time.Location
}

func NewVisitRepository(rdb *redis.Client, loc *time.Location) *VisitRepository {
	return &VisitRepository{rdb: rdb, loc: loc}
}

func (r *VisitRepository) Record(ctx context.Context, at time.Time) error {
	dayKey := domain.VisitsDayKeyBase + folio.DayKey(at, r.loc)

	pipe := r.rdb.TxPipeline()
	pipe.Incr(ctx, domain.VisitsTotalKey)
	pipe.Incr(ctx, dayKey)
	// day keys expire after 48h; "today" never reaches back further.
	pipe.Expire(ctx, dayKey, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *VisitRepository) Stats(ctx context.Context, at time.Time) (folio.VisitStats, error) {
	dayKey := domain.VisitsDayKeyBase + folio.DayKey(at, r.loc)

	total, err := r.rdb.Get(ctx, domain.VisitsTotalKey).Int64()
	if err != nil && err != redis.Nil {
		return folio.VisitStats{}, err
	}

	today, err := r.rdb.Get(ctx, dayKey).Int64()
	if err != nil && err != redis.Nil {
		return folio.VisitStats{}, err
	}

	return folio.VisitStats{TotalVisits: total, TodayVisits: today}, nil
}
