package jobs

import (
	"context"
	"log"
	"time"
)

// Runner drives the sweeps from an in-process ticker for deployments that
// have no external cron. The HTTP cron endpoints stay the primary trigger;
// the Redis lock keeps the two from overlapping.
type Runner struct {
	sweeper  *Sweeper
	interval time.Duration
}

func NewRunner(sweeper *Sweeper, interval time.Duration) *Runner {
	return &Runner{
		sweeper:  sweeper,
		interval: interval,
	}
}

func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("sweep runner started, interval %s", r.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("sweep runner stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if res, err := r.sweeper.CancelUnpaid(ctx); err != nil {
		log.Printf("cancel-unpaid sweep failed: %v", err)
	} else if res.Processed > 0 {
		log.Printf("cancel-unpaid sweep: %d processed", res.Processed)
	}

	if res, err := r.sweeper.CompletionReminders(ctx); err != nil {
		log.Printf("completion-reminder sweep failed: %v", err)
	} else if res.Processed > 0 {
		log.Printf("completion-reminder sweep: %d processed, %d failed", res.Processed, res.Failed)
	}

	if res, err := r.sweeper.ProcessPayouts(ctx); err != nil {
		log.Printf("payout sweep failed: %v", err)
	} else if res.Processed > 0 {
		log.Printf("payout sweep: %d processed, %d failed", res.Processed, res.Failed)
	}
}
