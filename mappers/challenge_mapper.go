// file: mappers/challenge_mapper.go
package mappers

import (
	"NebulaCTF/dto"
	"NebulaCTF/models"
)

func MapChallengeToItem(ch models.Challenge, creditedSpecs map[uint32]bool, unlocked bool) dto.ChallengeItemResp {
	solvedParts := 0
	for _, spec := range ch.FlagSpecs {
		if creditedSpecs[spec.ID] {
			solvedParts++
		}
	}
	return dto.ChallengeItemResp{
		ID:          ch.ID,
		Slug:        ch.Slug,
		Title:       ch.Title,
		Category:    string(ch.Category),
		Difficulty:  string(ch.Difficulty),
		Points:      ch.Points,
		PartCount:   len(ch.FlagSpecs),
		SolvedParts: solvedParts,
		Solved:      len(ch.FlagSpecs) > 0 && solvedParts == len(ch.FlagSpecs),
		Unlocked:    unlocked,
	}
}

func MapChallengeToDetail(ch models.Challenge, creditedSpecs map[uint32]bool, ownedHints map[uint32]bool) dto.ChallengeDetailResp {
	parts := make([]dto.FlagPartResp, 0, len(ch.FlagSpecs))
	solvedParts := 0
	for _, spec := range ch.FlagSpecs {
		credited := creditedSpecs[spec.ID]
		if credited {
			solvedParts++
		}
		parts = append(parts, dto.FlagPartResp{
			PartIndex: spec.PartIndex,
			Points:    spec.Points,
			Credited:  credited,
		})
	}

	hints := make([]dto.HintResp, 0, len(ch.Hints))
	for _, h := range ch.Hints {
		resp := dto.HintResp{
			ID:      h.ID,
			Ordinal: h.Ordinal,
			Cost:    h.Cost,
			Owned:   ownedHints[h.ID],
		}
		if resp.Owned {
			resp.Content = h.Content
		}
		hints = append(hints, resp)
	}

	return dto.ChallengeDetailResp{
		ID:          ch.ID,
		Slug:        ch.Slug,
		Title:       ch.Title,
		Category:    string(ch.Category),
		Difficulty:  string(ch.Difficulty),
		Description: ch.Description,
		Points:      ch.Points,
		Link:        ch.Link,
		Parts:       parts,
		Hints:       hints,
		Solved:      len(ch.FlagSpecs) > 0 && solvedParts == len(ch.FlagSpecs),
	}
}

func MapUnlockConditions(conds []models.UnlockCondition, slugByID map[uint32]string) []dto.UnlockConditionResp {
	out := make([]dto.UnlockConditionResp, 0, len(conds))
	for _, cond := range conds {
		resp := dto.UnlockConditionResp{Type: string(cond.Type)}
		if cond.RequiredChallengeID != nil {
			resp.RequiredChallenge = slugByID[*cond.RequiredChallengeID]
		}
		resp.TimeThresholdSeconds = cond.TimeThresholdSeconds
		out = append(out, resp)
	}
	return out
}
