package demo

import (
	"context"
	"errors"
	"log"

	"github.com/robfig/cron/v3"
)

// StartResetScheduler resets the demo account on schedule, a standard
// five-field cron spec or a descriptor such as "@every 1h". The returned
// cron is already running; Stop it on shutdown.
func StartResetScheduler(account *Account, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		err := account.ResetExisting(context.Background())
		switch {
		case errors.Is(err, ErrDemoUserMissing):
			log.Println("[Demo] scheduled reset skipped, demo account not created yet")
		case err != nil:
			log.Printf("[Demo] scheduled reset failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
