package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fxsml/flowline/queue"
)

// Source pumps envelopes from a Redis list into a pipeline entry queue.
type Source struct {
	client redis.Cmdable
	cfg    Config
}

// NewSource creates a source reading from cfg.Key.
func NewSource(client redis.Cmdable, cfg Config) (*Source, error) {
	if cfg.Key == "" {
		return nil, ErrNoKey
	}
	return &Source{client: client, cfg: cfg.parse()}, nil
}

// Pump moves envelopes from the Redis list to dst until ctx is canceled or
// dst's queue is closed. It releases dst on exit, so a pipeline fed only by
// this source observes end-of-stream when the pump stops.
//
// Entries that fail to decode are logged and skipped; a malformed envelope
// on the transport must not stall the pipeline.
func (s *Source) Pump(ctx context.Context, dst *queue.Sender[*Envelope]) error {
	defer dst.Close()
	cfg := s.cfg
	cfg.Logger.Debug("broker: source started", "key", cfg.Key)
	defer cfg.Logger.Debug("broker: source stopped", "key", cfg.Key)

	for {
		raw, err := s.client.RPop(ctx, cfg.Key).Result()
		switch {
		case err == nil:
			var env Envelope
			if err := json.Unmarshal([]byte(raw), &env); err != nil {
				cfg.Logger.Error("broker: dropping malformed envelope", "key", cfg.Key, "error", err)
				continue
			}
			if err := dst.Send(&env); err != nil {
				// Queue closed: the pipeline shut down first.
				return nil
			}
		case errors.Is(err, redis.Nil):
			if err := sleep(ctx, cfg.PollInterval); err != nil {
				return nil
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return err
		}
	}
}

// Sink pumps envelopes from a pipeline exit queue into a Redis list.
type Sink struct {
	client redis.Cmdable
	cfg    Config
}

// NewSink creates a sink writing to cfg.Key.
func NewSink(client redis.Cmdable, cfg Config) (*Sink, error) {
	if cfg.Key == "" {
		return nil, ErrNoKey
	}
	return &Sink{client: client, cfg: cfg.parse()}, nil
}

// Drain moves envelopes from src to the Redis list until src's queue is
// closed and fully drained. It releases src on exit.
func (s *Sink) Drain(ctx context.Context, src *queue.Receiver[*Envelope]) error {
	defer src.Close()
	cfg := s.cfg
	cfg.Logger.Debug("broker: sink started", "key", cfg.Key)
	defer cfg.Logger.Debug("broker: sink stopped", "key", cfg.Key)

	for {
		env, ok := src.Recv()
		if !ok {
			return nil
		}
		data, err := json.Marshal(env)
		if err != nil {
			cfg.Logger.Error("broker: dropping unmarshalable envelope", "key", cfg.Key, "id", env.ID, "error", err)
			continue
		}
		if err := s.client.LPush(ctx, cfg.Key, data).Err(); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
