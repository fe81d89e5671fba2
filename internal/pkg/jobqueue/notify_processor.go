package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/mail"
	"github.com/medihub/medihub/internal/pkg/moderation"
)

var noticeSubjects = map[string]string{
	models.NotificationReportResolved:  "[MediHub] 신고 처리 결과 안내",
	models.NotificationReportDismissed: "[MediHub] 신고 처리 결과 안내",
	models.NotificationSanctionIssued:  "[MediHub] 계정 제재 안내",
	models.NotificationSanctionRevoked: "[MediHub] 계정 제재 해제 안내",
	models.NotificationSanctionExpired: "[MediHub] 계정 제재 만료 안내",
}

// NotifyProcessor persists moderation notices and mirrors them by mail
type NotifyProcessor struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	mailer        mail.Mailer
}

// NewNotifyProcessor creates the processor; mailer may be nil.
func NewNotifyProcessor(notifications repository.NotificationRepository, profiles repository.ProfileRepository, mailer mail.Mailer) *NotifyProcessor {
	return &NotifyProcessor{
		notifications: notifications,
		profiles:      profiles,
		mailer:        mailer,
	}
}

// Process stores the notification row. Mail failures are logged only, a retry
// would duplicate the stored row.
func (p *NotifyProcessor) Process(ctx context.Context, job *Job) error {
	payload, err := ModerationNotifyJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notify payload: %w", err)
	}
	if payload.ProfileID == 0 {
		return fmt.Errorf("notify job %s has no profile", job.ID)
	}

	notification := &models.Notification{
		ProfileID:   payload.ProfileID,
		Type:        payload.Type,
		ReferenceID: payload.ReferenceID,
		Content:     payload.Content,
	}
	if err := p.notifications.Create(notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if p.mailer == nil {
		return nil
	}
	profile, err := p.profiles.GetByID(payload.ProfileID)
	if err != nil {
		log.Warnf("[JobQueue] Notification %d stored but profile %d not loadable for mail: %v", notification.ID, payload.ProfileID, err)
		return nil
	}
	subject, ok := noticeSubjects[payload.Type]
	if !ok {
		subject = "[MediHub] 알림"
	}
	if err := p.mailer.Send(profile.Email, subject, payload.Content); err != nil {
		log.Warnf("[JobQueue] Mail for notification %d failed: %v", notification.ID, err)
	}
	return nil
}

// QueueNotifier implements moderation.Notifier by enqueueing notify jobs
type QueueNotifier struct {
	queue *Queue
}

func NewQueueNotifier(queue *Queue) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) Notify(ctx context.Context, notice moderation.Notice) error {
	_, err := n.queue.EnqueueJob(ctx, JobTypeModerationNotify, ModerationNotifyJobPayload{
		ProfileID:   notice.ProfileID,
		Type:        notice.Type,
		ReferenceID: notice.ReferenceID,
		Content:     notice.Content,
	}.ToMap())
	return err
}
