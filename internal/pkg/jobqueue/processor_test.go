package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/moderation"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type MockExpirer struct {
	mock.Mock
}

func (m *MockExpirer) ExpireDueSanctions(ctx context.Context, batch int) (int, error) {
	args := m.Called(ctx, batch)
	return args.Int(0), args.Error(1)
}

func setupProcessorDB(t *testing.T) (*repository.Repositories, *models.Profile) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Notification{}))

	p := &models.Profile{Name: "김한의", Email: "doctor@medihub.kr", Password: "x", Role: models.ROLE_DOCTOR, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(p).Error)
	return repository.NewRepositories(db), p
}

func notifyJob(profileID uint, noticeType string) *Job {
	return &Job{
		ID:   "notify-1",
		Type: JobTypeModerationNotify,
		Payload: ModerationNotifyJobPayload{
			ProfileID:   profileID,
			Type:        noticeType,
			ReferenceID: 11,
			Content:     "신고하신 건이 처리되었습니다.",
		}.ToMap(),
	}
}

func TestNotifyProcessor_StoresAndMails(t *testing.T) {
	repos, profile := setupProcessorDB(t)
	mailer := new(MockMailer)
	mailer.On("Send", "doctor@medihub.kr", "[MediHub] 신고 처리 결과 안내", "신고하신 건이 처리되었습니다.").Return(nil)

	p := NewNotifyProcessor(repos.Notification, repos.Profile, mailer)
	require.NoError(t, p.Process(context.Background(), notifyJob(profile.ID, models.NotificationReportResolved)))

	list, err := repos.Notification.ListByProfile(profile.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationReportResolved, list[0].Type)
	assert.Equal(t, uint(11), list[0].ReferenceID)
	assert.False(t, list[0].IsRead)
	mailer.AssertExpectations(t)
}

func TestNotifyProcessor_MailFailureDoesNotFailJob(t *testing.T) {
	repos, profile := setupProcessorDB(t)
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	p := NewNotifyProcessor(repos.Notification, repos.Profile, mailer)
	assert.NoError(t, p.Process(context.Background(), notifyJob(profile.ID, models.NotificationSanctionIssued)))

	list, err := repos.Notification.ListByProfile(profile.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotifyProcessor_WithoutMailer(t *testing.T) {
	repos, profile := setupProcessorDB(t)

	p := NewNotifyProcessor(repos.Notification, repos.Profile, nil)
	require.NoError(t, p.Process(context.Background(), notifyJob(profile.ID, models.NotificationSanctionRevoked)))
}

func TestNotifyProcessor_RejectsMissingProfile(t *testing.T) {
	repos, _ := setupProcessorDB(t)

	p := NewNotifyProcessor(repos.Notification, repos.Profile, nil)
	assert.Error(t, p.Process(context.Background(), notifyJob(0, models.NotificationReportResolved)))
}

func TestExpiryProcessor(t *testing.T) {
	tests := []struct {
		name      string
		batch     int
		wantBatch int
		result    int
		err       error
	}{
		{"explicit batch", 50, 50, 3, nil},
		{"default batch", 0, moderation.DefaultExpiryBatch, 0, nil},
		{"expirer error", 10, 10, 0, errors.New("deadlock")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expirer := new(MockExpirer)
			expirer.On("ExpireDueSanctions", mock.Anything, tt.wantBatch).Return(tt.result, tt.err)

			job := &Job{ID: "sweep", Type: JobTypeSanctionExpirySweep, Payload: SanctionExpirySweepJobPayload{Batch: tt.batch, TriggeredBy: "cron"}.ToMap()}
			err := NewExpiryProcessor(expirer).Process(context.Background(), job)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			expirer.AssertExpectations(t)
		})
	}
}

func TestQueueNotifier_EnqueuesNotice(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	ctx := context.Background()
	queue := NewQueue(client, 1)

	var notifier moderation.Notifier = NewQueueNotifier(queue)
	require.NoError(t, notifier.Notify(ctx, moderation.Notice{ProfileID: 5, Type: models.NotificationSanctionIssued, ReferenceID: 2, Content: "정지"}))

	job, err := queue.dequeueJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobTypeModerationNotify, job.Type)
	payload, err := ModerationNotifyJobPayloadFromMap(job.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint(5), payload.ProfileID)
	assert.Equal(t, "정지", payload.Content)
}
