package moderation

import "github.com/medihub/medihub/app/models"

// Action is a moderator operation offered for a report
type Action string

const (
	ActionStartReview Action = "start_review"
	ActionDismiss     Action = "dismiss"
	ActionResolve     Action = "resolve"
	ActionRevoke      Action = "revoke"
	ActionSubmit      Action = "submit"
	ActionEvidence    Action = "attach_evidence"
)

// AvailableActions lists the actions a moderator can take on a report in status.
// Terminal reports get an empty, non-nil slice.
func AvailableActions(status models.ReportStatus) []Action {
	actions := []Action{}
	if models.CanTransition(status, models.ReportStatusReviewing) {
		actions = append(actions, ActionStartReview)
	}
	if models.CanTransition(status, models.ReportStatusDismissed) {
		actions = append(actions, ActionDismiss)
	}
	if models.CanTransition(status, models.ReportStatusResolved) {
		actions = append(actions, ActionResolve)
	}
	return actions
}
