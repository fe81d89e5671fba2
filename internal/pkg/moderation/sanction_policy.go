package moderation

import (
	"strings"
	"time"

	"github.com/medihub/medihub/app/models"
)

// SanctionRequest is the optional sanction part of a resolve request
type SanctionRequest struct {
	Type         models.SanctionType
	DurationDays *int
}

// SanctionOptions is what the resolve form offers moderators
type SanctionOptions struct {
	Types             []SanctionTypeOption `json:"types"`
	SuspensionPresets []int                `json:"suspensionPresets"`
	MaxDurationDays   int                  `json:"maxDurationDays"`
}

type SanctionTypeOption struct {
	Value                models.SanctionType `json:"value"`
	Label                string              `json:"label"`
	RequiresDuration     bool                `json:"requiresDuration"`
	RequiresConfirmation bool                `json:"requiresConfirmation"`
}

// Options returns the sanction choices for the resolve form
func Options() SanctionOptions {
	types := []models.SanctionType{models.SanctionWarning, models.SanctionSuspension, models.SanctionPermanentBan}
	opts := SanctionOptions{
		SuspensionPresets: append([]int(nil), models.SuspensionPresets...),
		MaxDurationDays:   models.MaxSuspensionDays,
	}
	for _, t := range types {
		opts.Types = append(opts.Types, SanctionTypeOption{
			Value:                t,
			Label:                t.Label(),
			RequiresDuration:     t == models.SanctionSuspension,
			RequiresConfirmation: t == models.SanctionPermanentBan,
		})
	}
	return opts
}

// buildSanction validates req and returns the sanction row to insert with the
// resolution. Suspensions must name their duration explicitly.
func buildSanction(report *models.Report, req SanctionRequest, reason string, moderatorID uint, now time.Time) (*models.Sanction, error) {
	if !req.Type.Valid() {
		return nil, invalid("sanctionType", "지원하지 않는 제재 유형입니다")
	}

	sanction := &models.Sanction{
		ReportID:     report.ID,
		TargetType:   report.TargetType,
		TargetID:     report.TargetID,
		SanctionType: req.Type,
		Status:       models.SanctionStatusActive,
		Reason:       strings.TrimSpace(reason),
		StartsAt:     now,
		CreatedByID:  moderatorID,
	}

	switch req.Type {
	case models.SanctionSuspension:
		if req.DurationDays == nil {
			return nil, invalid("durationDays", "일시정지 기간을 선택해 주세요")
		}
		days := *req.DurationDays
		if days < 1 || days > models.MaxSuspensionDays {
			return nil, invalid("durationDays", "일시정지 기간은 1일 이상 3650일 이하여야 합니다")
		}
		endsAt := now.AddDate(0, 0, days)
		sanction.DurationDays = &days
		sanction.EndsAt = &endsAt
	default:
		if req.DurationDays != nil {
			return nil, invalid("durationDays", "경고와 영구정지에는 기간을 지정할 수 없습니다")
		}
	}

	return sanction, nil
}

// deriveStanding folds a profile's active sanctions into one standing value.
// Suspensions already past their end time no longer count even if the sweeper
// has not caught up yet.
func deriveStanding(active []models.Sanction, now time.Time) (string, *time.Time) {
	standing := models.STANDING_GOOD
	var until *time.Time
	for i := range active {
		s := &active[i]
		if s.Status != models.SanctionStatusActive {
			continue
		}
		switch s.SanctionType {
		case models.SanctionPermanentBan:
			return models.STANDING_BANNED, nil
		case models.SanctionSuspension:
			if s.EndsAt == nil || !s.EndsAt.After(now) {
				continue
			}
			standing = models.STANDING_SUSPENDED
			if until == nil || s.EndsAt.After(*until) {
				t := *s.EndsAt
				until = &t
			}
		}
	}
	return standing, until
}
