// file: services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartScoreboardScheduler refreshes the scoreboard cache once a minute so
// polling clients stay close to the ledger even if an async refresh was
// missed.
func StartScoreboardScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] failed to start: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(UpdateScoreboardCache),
	)
	if err != nil {
		log.Printf("[Scheduler] failed to register scoreboard job: %v", err)
	}
}
