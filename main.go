// file: main.go
package main

import (
	"context"
	"log"

	"NebulaCTF/config"
	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/routes"
	"NebulaCTF/services"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database.Connect()
	database.InitRedis()

	database.DB.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Challenge{},
		&models.FlagSpec{},
		&models.UnlockCondition{},
		&models.Hint{},
		&models.TeamHint{},
		&models.Submission{},
		&models.SubmissionLog{},
		&models.PointHistory{},
		&models.Scoreboard{},
		&models.SolveFeed{},
	)

	if config.C.IngestOnStartup {
		report, err := services.Ingest(context.Background(), config.C.ChallengeDir)
		if err != nil {
			log.Fatalf("Startup ingest failed: %v", err)
		}
		for _, failure := range report.Failures {
			log.Printf("Ingest failure: %s: %s", failure.Path, failure.Reason)
		}
	}

	services.UpdateScoreboardCache()
	services.StartScoreboardScheduler()

	r := routes.SetupRouter()

	log.Printf("Starting server on %s", config.C.ListenAddr)
	if err := r.Run(config.C.ListenAddr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
