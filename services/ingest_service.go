// file: services/ingest_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"NebulaCTF/config"
	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// The ingestion engine walks a two-level challenge tree:
//
//	root/<category>/<challenge-name>/challenge.yml
//	root/<category>/<challenge-name>/files/...      (optional assets)
//	root/<category>/<challenge-name>/WRITEUP.md     (optional, ignored)
//
// Each challenge is upserted in its own transaction keyed by slug, so an
// aborted run leaves the store at the last fully-committed challenge.
// Solved-prerequisite references are resolved inside that transaction when
// the referenced challenge is already stored; only references to challenges
// that do not exist yet are deferred to a second pass at the end of the
// walk, so forward references within one run still work.

type IngestFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type IngestReport struct {
	RunID        string          `json:"run_id"`
	Created      int             `json:"created"`
	Updated      int             `json:"updated"`
	Unchanged    int             `json:"unchanged"`
	AssetsCopied int             `json:"assets_copied"`
	Failures     []IngestFailure `json:"failures"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}

func (r *IngestReport) fail(path, reason string) {
	r.Failures = append(r.Failures, IngestFailure{Path: path, Reason: reason})
}

// Descriptor document shapes (challenge.yml).
type flagPartDoc struct {
	Flag   string `yaml:"flag"`
	Points uint   `yaml:"points"`
}

type hintDoc struct {
	Content string `yaml:"content"`
	Cost    uint   `yaml:"cost"`
}

type unlockDoc struct {
	Type                 string `yaml:"type"`
	RequiredChallengeID  string `yaml:"requiredChallengeId"`
	TimeThresholdSeconds *int64 `yaml:"timeThresholdSeconds"`
}

type challengeDoc struct {
	Slug             string        `yaml:"slug"`
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	Category         string        `yaml:"category"`
	Difficulty       string        `yaml:"difficulty"`
	Points           uint          `yaml:"points"`
	Flag             string        `yaml:"flag"`
	Flags            []flagPartDoc `yaml:"flags"`
	Hints            []hintDoc     `yaml:"hints"`
	UnlockConditions []unlockDoc   `yaml:"unlockConditions"`
	Link             string        `yaml:"link"`
}

type pendingUnlockRef struct {
	challengeID  uint32
	requiredSlug string
	path         string
}

// Runs are serialized; submissions keep flowing while one runs.
var ingestMu sync.Mutex

// Ingest imports the challenge tree under root. A malformed challenge is
// recorded in the report and never aborts the rest of the run; only an
// unreadable root or a cancelled context stops it.
func Ingest(ctx context.Context, root string) (*IngestReport, error) {
	ingestMu.Lock()
	defer ingestMu.Unlock()

	report := &IngestReport{
		RunID:     utils.GenerateRunID(),
		StartedAt: time.Now(),
	}

	categories, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read challenge root %s: %w", root, err)
	}

	var pending []pendingUnlockRef
	for _, category := range categories {
		if !category.IsDir() {
			continue
		}
		categoryPath := filepath.Join(root, category.Name())
		leaves, err := os.ReadDir(categoryPath)
		if err != nil {
			report.fail(categoryPath, "cannot read category directory: "+err.Error())
			continue
		}

		for _, leaf := range leaves {
			if err := ctx.Err(); err != nil {
				report.FinishedAt = time.Now()
				return report, err
			}
			if !leaf.IsDir() {
				continue
			}
			leafPath := filepath.Join(categoryPath, leaf.Name())
			refs := ingestOne(report, leafPath, leaf.Name())
			pending = append(pending, refs...)
		}
	}

	resolveUnlockRefs(report, pending)

	report.FinishedAt = time.Now()
	log.Printf("Ingest run %s: %d created, %d updated, %d unchanged, %d failures",
		report.RunID, report.Created, report.Updated, report.Unchanged, len(report.Failures))
	return report, nil
}

// ingestOne processes a single challenge directory and returns the
// cross-challenge unlock references to resolve in the second pass.
func ingestOne(report *IngestReport, leafPath, dirName string) []pendingUnlockRef {
	doc, err := readDescriptor(leafPath)
	if err != nil {
		report.fail(leafPath, err.Error())
		return nil
	}
	if reason := validateDescriptor(doc); reason != "" {
		report.fail(leafPath, reason)
		return nil
	}

	key := doc.Slug
	if key == "" {
		key = slug.Make(dirName)
	}

	var challengeID uint32
	var status string
	var unresolved []string
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		challengeID, status, unresolved, err = upsertChallenge(tx, doc, key, leafPath)
		return err
	})
	if err != nil {
		report.fail(leafPath, err.Error())
		return nil
	}

	switch status {
	case "created":
		report.Created++
	case "updated":
		report.Updated++
	default:
		report.Unchanged++
	}

	if n, err := copyAssets(leafPath, key); err != nil {
		report.fail(leafPath, "asset copy failed: "+err.Error())
	} else {
		report.AssetsCopied += n
	}

	var refs []pendingUnlockRef
	for _, requiredSlug := range unresolved {
		refs = append(refs, pendingUnlockRef{
			challengeID:  challengeID,
			requiredSlug: requiredSlug,
			path:         leafPath,
		})
	}
	return refs
}

func readDescriptor(leafPath string) (*challengeDoc, error) {
	var data []byte
	var err error
	for _, name := range []string{"challenge.yml", "challenge.yaml"} {
		data, err = os.ReadFile(filepath.Join(leafPath, name))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("missing descriptor challenge.yml")
	}

	var doc challengeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed descriptor: %v", err)
	}
	doc.Title = strings.TrimSpace(doc.Title)
	doc.Category = strings.ToLower(strings.TrimSpace(doc.Category))
	doc.Difficulty = strings.ToLower(strings.TrimSpace(doc.Difficulty))
	if doc.Difficulty == "" {
		doc.Difficulty = string(models.ChallengeDifficultyMedium)
	}
	return &doc, nil
}

// validateDescriptor returns an empty string when the descriptor is valid,
// otherwise the reason recorded in the report.
func validateDescriptor(doc *challengeDoc) string {
	if doc.Title == "" {
		return "title is required"
	}
	if strings.TrimSpace(doc.Description) == "" {
		return "description is required"
	}
	if !models.ValidCategory(doc.Category) {
		return "category must be one of web/crypto/pwn/reverse/forensics/misc"
	}
	if !models.ValidDifficulty(doc.Difficulty) {
		return "difficulty must be one of easy/medium/hard"
	}
	if doc.Points == 0 {
		return "points must be a positive integer"
	}
	if doc.Flag != "" && len(doc.Flags) > 0 {
		return "flag and flags are mutually exclusive"
	}
	if doc.Flag == "" && len(doc.Flags) == 0 {
		return "exactly one of flag or flags is required"
	}
	if len(doc.Flags) > 0 {
		var sum uint
		for i, part := range doc.Flags {
			if part.Flag == "" {
				return fmt.Sprintf("flags[%d].flag is required", i)
			}
			if part.Points == 0 {
				return fmt.Sprintf("flags[%d].points must be positive", i)
			}
			sum += part.Points
		}
		if sum != doc.Points {
			return fmt.Sprintf("flag part points sum to %d, declared total is %d", sum, doc.Points)
		}
	}
	for i, h := range doc.Hints {
		if strings.TrimSpace(h.Content) == "" {
			return fmt.Sprintf("hints[%d].content is required", i)
		}
	}
	for i, cond := range doc.UnlockConditions {
		switch cond.Type {
		case string(models.UnlockChallengeSolved):
			if strings.TrimSpace(cond.RequiredChallengeID) == "" {
				return fmt.Sprintf("unlockConditions[%d].requiredChallengeId is required", i)
			}
		case string(models.UnlockTimeRemainder):
			if cond.TimeThresholdSeconds == nil || *cond.TimeThresholdSeconds < 0 {
				return fmt.Sprintf("unlockConditions[%d].timeThresholdSeconds must be >= 0", i)
			}
		default:
			return fmt.Sprintf("unlockConditions[%d].type must be CHALLENGE_SOLVED or TIME_REMAINDER", i)
		}
	}
	return ""
}

// desiredParts expands the single-flag and multi-flag descriptor forms into
// one uniform list of flag parts.
func desiredParts(doc *challengeDoc) []models.FlagSpec {
	if doc.Flag != "" {
		return []models.FlagSpec{{PartIndex: 0, Value: doc.Flag, Points: doc.Points}}
	}
	parts := make([]models.FlagSpec, 0, len(doc.Flags))
	for i, part := range doc.Flags {
		parts = append(parts, models.FlagSpec{PartIndex: uint16(i), Value: part.Flag, Points: part.Points})
	}
	return parts
}

func upsertChallenge(tx *gorm.DB, doc *challengeDoc, key, leafPath string) (uint32, string, []string, error) {
	parts := desiredParts(doc)

	var existing models.Challenge
	err := tx.Preload("FlagSpecs", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_index asc")
	}).Preload("Hints", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal asc")
	}).Where("slug = ?", key).First(&existing).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", nil, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		challenge := models.Challenge{
			Slug:        key,
			Title:       doc.Title,
			Category:    models.ChallengeCategory(doc.Category),
			Difficulty:  models.ChallengeDifficulty(doc.Difficulty),
			Description: doc.Description,
			Points:      doc.Points,
			Link:        doc.Link,
			SourcePath:  leafPath,
		}
		if err := tx.Create(&challenge).Error; err != nil {
			return 0, "", nil, err
		}
		for i := range parts {
			parts[i].ChallengeID = challenge.ID
			if err := tx.Create(&parts[i]).Error; err != nil {
				return 0, "", nil, err
			}
		}
		for i, h := range doc.Hints {
			hint := models.Hint{ChallengeID: challenge.ID, Ordinal: uint16(i), Content: h.Content, Cost: h.Cost}
			if err := tx.Create(&hint).Error; err != nil {
				return 0, "", nil, err
			}
		}
		_, unresolved, err := reconcileConditions(tx, challenge.ID, doc)
		if err != nil {
			return 0, "", nil, err
		}
		return challenge.ID, "created", unresolved, nil
	}

	// Once any team holds a correct submission, point values are frozen:
	// retroactive weight changes would falsify the ledger's history.
	var creditCount int64
	if err := tx.Model(&models.Submission{}).Where("challenge_id = ?", existing.ID).Count(&creditCount).Error; err != nil {
		return 0, "", nil, err
	}
	if creditCount > 0 && pointsChanged(existing, parts, doc.Points) {
		return 0, "", nil, fmt.Errorf("challenge %s already has credited submissions; point values cannot change", key)
	}

	dirty := false

	updates := map[string]interface{}{}
	if existing.Title != doc.Title {
		updates["title"] = doc.Title
	}
	if existing.Category != models.ChallengeCategory(doc.Category) {
		updates["category"] = doc.Category
	}
	if existing.Difficulty != models.ChallengeDifficulty(doc.Difficulty) {
		updates["difficulty"] = doc.Difficulty
	}
	if existing.Description != doc.Description {
		updates["description"] = doc.Description
	}
	if existing.Points != doc.Points {
		updates["points"] = doc.Points
	}
	if existing.Link != doc.Link {
		updates["link"] = doc.Link
	}
	if existing.SourcePath != leafPath {
		updates["source_path"] = leafPath
	}
	if len(updates) > 0 {
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return 0, "", nil, err
		}
		dirty = true
	}

	specsDirty, err := reconcileFlagSpecs(tx, &existing, parts)
	if err != nil {
		return 0, "", nil, err
	}
	hintsDirty, err := reconcileHints(tx, &existing, doc.Hints)
	if err != nil {
		return 0, "", nil, err
	}
	condsDirty, unresolved, err := reconcileConditions(tx, existing.ID, doc)
	if err != nil {
		return 0, "", nil, err
	}
	if specsDirty || hintsDirty || condsDirty {
		dirty = true
	}

	if dirty {
		return existing.ID, "updated", unresolved, nil
	}
	return existing.ID, "unchanged", unresolved, nil
}

func pointsChanged(existing models.Challenge, parts []models.FlagSpec, total uint) bool {
	if existing.Points != total || len(existing.FlagSpecs) != len(parts) {
		return true
	}
	for i, spec := range existing.FlagSpecs {
		if spec.Points != parts[i].Points {
			return true
		}
	}
	return false
}

// reconcileFlagSpecs diffs desired parts against stored ones by part
// ordinal so spec IDs stay stable and credited submissions remain attached.
func reconcileFlagSpecs(tx *gorm.DB, challenge *models.Challenge, parts []models.FlagSpec) (bool, error) {
	dirty := false
	byIndex := make(map[uint16]models.FlagSpec, len(challenge.FlagSpecs))
	for _, spec := range challenge.FlagSpecs {
		byIndex[spec.PartIndex] = spec
	}

	for i := range parts {
		desired := parts[i]
		current, ok := byIndex[desired.PartIndex]
		if !ok {
			desired.ChallengeID = challenge.ID
			if err := tx.Create(&desired).Error; err != nil {
				return dirty, err
			}
			dirty = true
			continue
		}
		if current.Value != desired.Value || current.Points != desired.Points {
			err := tx.Model(&current).Updates(map[string]interface{}{
				"value":  desired.Value,
				"points": desired.Points,
			}).Error
			if err != nil {
				return dirty, err
			}
			dirty = true
		}
	}

	// Surplus parts are removed only when nothing was credited against them.
	for _, spec := range challenge.FlagSpecs {
		if int(spec.PartIndex) < len(parts) {
			continue
		}
		var credits int64
		if err := tx.Model(&models.Submission{}).Where("flag_spec_id = ?", spec.ID).Count(&credits).Error; err != nil {
			return dirty, err
		}
		if credits > 0 {
			return dirty, fmt.Errorf("flag part %d has credited submissions and cannot be removed", spec.PartIndex)
		}
		if err := tx.Delete(&models.FlagSpec{}, spec.ID).Error; err != nil {
			return dirty, err
		}
		dirty = true
	}
	return dirty, nil
}

func reconcileHints(tx *gorm.DB, challenge *models.Challenge, hints []hintDoc) (bool, error) {
	dirty := false
	byOrdinal := make(map[uint16]models.Hint, len(challenge.Hints))
	for _, h := range challenge.Hints {
		byOrdinal[h.Ordinal] = h
	}

	for i, desired := range hints {
		current, ok := byOrdinal[uint16(i)]
		if !ok {
			hint := models.Hint{ChallengeID: challenge.ID, Ordinal: uint16(i), Content: desired.Content, Cost: desired.Cost}
			if err := tx.Create(&hint).Error; err != nil {
				return dirty, err
			}
			dirty = true
			continue
		}
		if current.Content != desired.Content || current.Cost != desired.Cost {
			err := tx.Model(&current).Updates(map[string]interface{}{
				"content": desired.Content,
				"cost":    desired.Cost,
			}).Error
			if err != nil {
				return dirty, err
			}
			dirty = true
		}
	}

	// Purchased hints are permanent records; surplus ones are only deleted
	// while unowned.
	for _, h := range challenge.Hints {
		if int(h.Ordinal) < len(hints) {
			continue
		}
		var owned int64
		if err := tx.Model(&models.TeamHint{}).Where("hint_id = ?", h.ID).Count(&owned).Error; err != nil {
			return dirty, err
		}
		if owned > 0 {
			continue
		}
		if err := tx.Delete(&models.Hint{}, h.ID).Error; err != nil {
			return dirty, err
		}
		dirty = true
	}
	return dirty, nil
}

// reconcileConditions diffs the stored unlock conditions of the challenge
// against the descriptor. Solved-prerequisite references are resolved right
// here, inside the challenge's transaction, whenever the referenced
// challenge is already stored; only slugs that do not exist yet are handed
// back for the second pass. A stored gate is deleted solely when the
// descriptor no longer declares it, so an aborted run never leaves a
// challenge stripped of a gate it still declares.
func reconcileConditions(tx *gorm.DB, challengeID uint32, doc *challengeDoc) (bool, []string, error) {
	var existing []models.UnlockCondition
	if err := tx.Where("challenge_id = ?", challengeID).Find(&existing).Error; err != nil {
		return false, nil, err
	}

	dirty := false

	// Time thresholds: drop the ones no longer declared, add the missing.
	desiredTimes := map[int64]int{}
	for _, cond := range doc.UnlockConditions {
		if cond.Type == string(models.UnlockTimeRemainder) && cond.TimeThresholdSeconds != nil {
			desiredTimes[*cond.TimeThresholdSeconds]++
		}
	}
	for _, cond := range existing {
		if cond.Type != models.UnlockTimeRemainder {
			continue
		}
		if cond.TimeThresholdSeconds != nil && desiredTimes[*cond.TimeThresholdSeconds] > 0 {
			desiredTimes[*cond.TimeThresholdSeconds]--
			continue
		}
		if err := tx.Delete(&models.UnlockCondition{}, cond.ID).Error; err != nil {
			return dirty, nil, err
		}
		dirty = true
	}
	for threshold, missing := range desiredTimes {
		for ; missing > 0; missing-- {
			value := threshold
			entry := models.UnlockCondition{
				ChallengeID:          challengeID,
				Type:                 models.UnlockTimeRemainder,
				TimeThresholdSeconds: &value,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return dirty, nil, err
			}
			dirty = true
		}
	}

	// Solved prerequisites, keyed by the referenced challenge's slug.
	desiredSolved := map[string]bool{}
	for _, cond := range doc.UnlockConditions {
		if cond.Type == string(models.UnlockChallengeSolved) {
			desiredSolved[strings.TrimSpace(cond.RequiredChallengeID)] = true
		}
	}
	kept := map[string]bool{}
	for _, cond := range existing {
		if cond.Type != models.UnlockChallengeSolved {
			continue
		}
		refSlug := ""
		if cond.RequiredChallengeID != nil {
			var required models.Challenge
			if err := tx.Select("slug").First(&required, *cond.RequiredChallengeID).Error; err == nil {
				refSlug = required.Slug
			}
		}
		if refSlug != "" && desiredSolved[refSlug] {
			kept[refSlug] = true
			continue
		}
		if err := tx.Delete(&models.UnlockCondition{}, cond.ID).Error; err != nil {
			return dirty, nil, err
		}
		dirty = true
	}

	var unresolved []string
	for refSlug := range desiredSolved {
		if kept[refSlug] {
			continue
		}
		var required models.Challenge
		err := tx.Select("id").Where("slug = ?", refSlug).First(&required).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			unresolved = append(unresolved, refSlug)
			dirty = true
			continue
		}
		if err != nil {
			return dirty, nil, err
		}
		requiredID := required.ID
		entry := models.UnlockCondition{
			ChallengeID:         challengeID,
			Type:                models.UnlockChallengeSolved,
			RequiredChallengeID: &requiredID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return dirty, nil, err
		}
		dirty = true
	}
	return dirty, unresolved, nil
}

// resolveUnlockRefs is the second ingestion pass, handling only the forward
// references the per-challenge transactions could not resolve: every
// challenge of the run is upserted by now. A reference to a slug that still
// does not exist fails that condition only.
func resolveUnlockRefs(report *IngestReport, pending []pendingUnlockRef) {
	for _, ref := range pending {
		var required models.Challenge
		err := database.DB.Select("id").Where("slug = ?", ref.requiredSlug).First(&required).Error
		if err != nil {
			report.fail(ref.path, fmt.Sprintf("unlock condition references unknown challenge %q", ref.requiredSlug))
			continue
		}

		var count int64
		err = database.DB.Model(&models.UnlockCondition{}).
			Where("challenge_id = ? AND type = ? AND required_challenge_id = ?",
				ref.challengeID, models.UnlockChallengeSolved, required.ID).
			Count(&count).Error
		if err != nil {
			report.fail(ref.path, "failed to store unlock condition: "+err.Error())
			continue
		}
		if count > 0 {
			continue
		}

		requiredID := required.ID
		entry := models.UnlockCondition{
			ChallengeID:         ref.challengeID,
			Type:                models.UnlockChallengeSolved,
			RequiredChallengeID: &requiredID,
		}
		if err := database.DB.Create(&entry).Error; err != nil {
			report.fail(ref.path, "failed to store unlock condition: "+err.Error())
		}
	}
}

// copyAssets places the challenge's files/ directory under the public asset
// root keyed by slug, overwriting previous copies.
func copyAssets(leafPath, key string) (int, error) {
	src := filepath.Join(leafPath, "files")
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return 0, nil
	}
	return utils.CopyDir(src, filepath.Join(config.C.AssetDir, key))
}
