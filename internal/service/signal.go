package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
)

// SignalService fans content-change events out to realtime subscribers over
// redis pub/sub.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event folio.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.EventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe forwards events from the channel into output until ctx ends.
func (s *SignalService) Subscribe(ctx context.Context, output chan<- folio.Event) {
	pubsub := s.rdb.Subscribe(ctx, domain.EventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event folio.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(
					ctx, "dropping malformed event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
