package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartSessionSweepWorker refunds and removes timed out game sessions every
// interval. Returns a cleanup function to stop the worker gracefully.
func (b *Bot) StartSessionSweepWorker(ctx context.Context, interval time.Duration) func() {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})
	manager := b.casino.Sessions()

	go func() {
		log.Infof("Session sweep worker started, checking every %s", interval)
		for {
			select {
			case <-ticker.C:
				if expired := manager.Sweep(ctx); len(expired) > 0 {
					log.Debugf("Swept %d expired game sessions", len(expired))
				}
			case <-ctx.Done():
				log.Info("Session sweep worker shutting down (context cancelled)...")
				ticker.Stop()
				return
			case <-stopChan:
				log.Info("Session sweep worker shutting down (stop requested)...")
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		log.Info("Stopping session sweep worker...")
		close(stopChan)
	}
}
