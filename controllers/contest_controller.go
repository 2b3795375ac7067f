// file: controllers/contest_controller.go
package controllers

import (
	"time"

	"NebulaCTF/config"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
)

type contestPhase string

const (
	phasePreparing contestPhase = "preparing"
	phaseRunning   contestPhase = "running"
	phaseEnded     contestPhase = "ended"
)

// GetCompetitionStatus reports the phase and remaining time of the
// configured competition window. Time-based unlock conditions evaluate
// against the same window.
func GetCompetitionStatus(c *gin.Context) {
	now := time.Now()
	start := config.C.CompetitionStart
	end := config.C.CompetitionEnd

	var phase contestPhase
	var remaining string
	switch {
	case !start.IsZero() && now.Before(start):
		phase = phasePreparing
		remaining = start.Sub(now).Round(time.Second).String()
	case !end.IsZero() && now.After(end):
		phase = phaseEnded
		remaining = "0s"
	default:
		phase = phaseRunning
		if !end.IsZero() {
			remaining = end.Sub(now).Round(time.Second).String()
		}
	}

	utils.Success(c, "success", gin.H{
		"phase":      phase,
		"start_time": start,
		"end_time":   end,
		"remaining":  remaining,
	})
}
