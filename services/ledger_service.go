// file: services/ledger_service.go
package services

import (
	"database/sql"
	"log"
	"time"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"gorm.io/gorm"
)

// LeaderboardRow is one derived standing: score is SUM(delta) over the
// team's ledger entries, LastScoreTime the moment the team last gained
// points (debits do not improve a team's tie-break position).
type LeaderboardRow struct {
	TeamID        uint32     `json:"team_id"`
	TeamName      string     `json:"team_name"`
	Score         int        `json:"score"`
	LastScoreTime *time.Time `json:"last_score_time"`
}

// AppendPointEntry appends one immutable ledger row inside the caller's
// transaction. Score corrections are new offsetting entries, never edits.
func AppendPointEntry(tx *gorm.DB, teamID uint32, delta int, reason models.PointReason, refID uint64, note string) (uint64, error) {
	entry := models.PointHistory{
		TeamID: teamID,
		Delta:  delta,
		Reason: reason,
		RefID:  refID,
		Note:   note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// CurrentScore derives a team's score from the ledger. No component holds a
// mutable score counter.
func CurrentScore(db *gorm.DB, teamID uint32) (int, error) {
	var score int
	err := db.Model(&models.PointHistory{}).
		Where("team_id = ?", teamID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&score).Error
	return score, err
}

// TeamHistory returns a team's full point timeline, oldest first.
func TeamHistory(teamID uint32) ([]models.PointHistory, error) {
	var entries []models.PointHistory
	err := database.DB.Where("team_id = ?", teamID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	return entries, err
}

// Leaderboard aggregates the ledger into ordered standings: score
// descending, ties broken by who reached their score earlier.
func Leaderboard(limit int) ([]LeaderboardRow, error) {
	// Drivers hand the MAX(created_at) aggregate back as text, not as a
	// timestamp column, so it is scanned as a string and parsed explicitly.
	type standing struct {
		TeamID        uint32
		TeamName      string
		Score         int
		LastScoreTime sql.NullString
	}
	var raw []standing
	db := database.DB.Table("nebulactf_point_history p").
		Select("p.team_id, t.team_name, SUM(p.delta) as score, MAX(CASE WHEN p.delta > 0 THEN p.created_at END) as last_score_time").
		Joins("JOIN nebulactf_team t ON p.team_id = t.id").
		Where("t.team_status = ?", models.TeamStatusActive).
		Group("p.team_id, t.team_name").
		Order("score desc, last_score_time asc")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&raw).Error; err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, LeaderboardRow{
			TeamID:        r.TeamID,
			TeamName:      r.TeamName,
			Score:         r.Score,
			LastScoreTime: parseAggregateTime(r.LastScoreTime),
		})
	}
	return rows, nil
}

// Timestamp layouts emitted for aggregate columns: sqlite text storage
// (with and without offset), mysql DATETIME text, and RFC3339 from drivers
// that convert to time.Time on the way out.
var aggregateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseAggregateTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	for _, layout := range aggregateTimeLayouts {
		if t, err := time.Parse(layout, v.String); err == nil {
			return &t
		}
	}
	return nil
}

// UpdateScoreboardCache rebuilds the scoreboard cache table from the ledger
// and drops the related redis keys so readers see fresh standings.
func UpdateScoreboardCache() {
	rows, err := Leaderboard(0)
	if err != nil {
		log.Printf("Scoreboard refresh failed: %v", err)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM nebulactf_scoreboard").Error; err != nil {
			return err
		}
		for i, row := range rows {
			entry := models.Scoreboard{
				TeamID:        row.TeamID,
				TeamName:      row.TeamName,
				Score:         row.Score,
				LastScoreTime: row.LastScoreTime,
				Rank:          uint(i + 1),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Scoreboard refresh failed: %v", err)
		return
	}

	if database.RDB != nil {
		keys, err := database.RDB.Keys(database.Ctx, "scoreboard:*").Result()
		if err == nil && len(keys) > 0 {
			database.RDB.Del(database.Ctx, keys...)
		}
	}
}

// AddSolveToFeed appends one correct credit to the public activity feed and
// trims the feed table.
func AddSolveToFeed(sub models.Submission, challenge models.Challenge, team models.Team) {
	feedEntry := models.SolveFeed{
		ChallengeID:   sub.ChallengeID,
		ChallengeName: challenge.Title,
		TeamID:        sub.TeamID,
		TeamName:      team.TeamName,
		Points:        sub.Points,
		SolvingTime:   sub.SolvedAt,
	}
	if err := database.DB.Create(&feedEntry).Error; err != nil {
		log.Printf("Failed to record solve feed entry: %v", err)
		return
	}

	var count int64
	if err := database.DB.Model(&models.SolveFeed{}).Count(&count).Error; err != nil {
		log.Printf("Failed to trim solve feed: %v", err)
		return
	}
	if count > 5000 {
		database.DB.Exec("DELETE FROM nebulactf_solve_feed WHERE id IN (SELECT id FROM nebulactf_solve_feed ORDER BY solving_time asc LIMIT ?)", count-5000)
	}
}
