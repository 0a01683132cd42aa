package worker

// retry_cron.go
// Background goroutine that periodically drains the fechamento DLQ back into
// the live queue, giving parked reports another chance once the SMTP relay
// recovers. Uses the Circuit Breaker to avoid hammering a downed relay.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 5 * time.Minute
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 5 minutes
// and requeues parked DLQ entries. It respects the context for graceful
// shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed relay
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueFechamento
	for i := 0; i < retryBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			return // empty or redis unavailable
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("retry_cron: corrupt DLQ entry, dropping")
			continue
		}

		// Re-enter the live queue with the attempt counter reset: the
		// original failure was environmental, not a property of the job.
		job := Job{Type: entry.JobType, Payload: entry.Payload, Attempts: 0}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to marshal requeued job")
			continue
		}
		if err := cfg.RDB.LPush(ctx, entry.OriginalQueue, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue DLQ entry")
			return
		}
		log.Info().
			Str("queue", entry.OriginalQueue).
			Str("job_type", entry.JobType).
			Msg("retry_cron: DLQ entry requeued")
	}
}
