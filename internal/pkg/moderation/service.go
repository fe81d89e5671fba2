package moderation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/evidence"
	"github.com/medihub/medihub/internal/pkg/metrics"
	"github.com/medihub/medihub/internal/pkg/security"
	"gorm.io/gorm"
)

const (
	PageSize           = 20
	MaxPage            = 100000
	MaxDetailLength    = 1000
	MinOtherDetail     = 5
	MaxSummaryLength   = 255
	evidenceURLTTL     = 10 * time.Minute
	DefaultExpiryBatch = 200
)

// Notice is a message for one profile produced by a moderation action
type Notice struct {
	ProfileID   uint   `json:"profileId"`
	Type        string `json:"type"`
	ReferenceID uint   `json:"referenceId"`
	Content     string `json:"content"`
}

// Notifier delivers notices asynchronously. Delivery failures never fail the
// moderation action that produced them.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// EvidenceStore persists evidence files
type EvidenceStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service implements report intake, the report status machine and the sanction ledger
type Service struct {
	repos    *repository.Repositories
	confirm  *security.ConfirmSigner
	cache    DetailCache
	notifier Notifier
	evidence EvidenceStore
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

func WithDetailCache(c DetailCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithEvidenceStore(e EvidenceStore) Option {
	return func(s *Service) { s.evidence = e }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repos *repository.Repositories, confirm *security.ConfirmSigner, opts ...Option) *Service {
	s := &Service{
		repos:   repos,
		confirm: confirm,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitReportInput is a new complaint from an authenticated profile
type SubmitReportInput struct {
	TargetType    models.TargetType
	TargetID      uint
	TargetSummary string
	Reason        models.ReportReason
	Detail        string
	ClientIPv4    string
	ClientIPv6    string
}

// ListFilter selects one page of the moderator queue
type ListFilter struct {
	TargetType string
	Status     string
	Query      string
	Page       int
}

type ReportPage struct {
	Items    []models.Report `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// SanctionView is a ledger entry as shown to moderators
type SanctionView struct {
	models.Sanction
	CanRevoke bool `json:"canRevoke"`
}

// ReportDetail is everything the moderator detail screen needs for one report
type ReportDetail struct {
	Report            *models.Report          `json:"report"`
	ReasonLabel       string                  `json:"reasonLabel"`
	TargetReportCount int64                   `json:"targetReportCount"`
	CumulativeWarning bool                    `json:"cumulativeWarning"`
	Sanctions         []SanctionView          `json:"sanctions"`
	Evidence          []models.ReportEvidence `json:"evidence"`
	Actions           []Action                `json:"actions"`
	CanProcess        bool                    `json:"canProcess"`
}

// ResolveInput closes a report, optionally issuing a sanction
type ResolveInput struct {
	Sanction     *SanctionRequest
	Reason       string
	ConfirmToken string
}

type ResolveResult struct {
	Report   *models.Report   `json:"report"`
	Sanction *models.Sanction `json:"sanction,omitempty"`
}

// Standing is the derived account state of a profile
type Standing struct {
	ProfileID       uint           `json:"profileId"`
	Standing        string         `json:"standing"`
	SuspendedUntil  *time.Time     `json:"suspendedUntil,omitempty"`
	ActiveSanctions []SanctionView `json:"activeSanctions"`
}

// EvidenceUpload is a sniffed file ready for storage
type EvidenceUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitReport records a new pending report.
func (s *Service) SubmitReport(ctx context.Context, reporterID uint, in SubmitReportInput) (*models.Report, error) {
	detail := strings.TrimSpace(in.Detail)
	summary := strings.TrimSpace(in.TargetSummary)

	switch {
	case !in.TargetType.Valid():
		return nil, invalid("targetType", "신고 대상 유형이 올바르지 않습니다")
	case in.TargetID == 0:
		return nil, invalid("targetId", "신고 대상을 지정해 주세요")
	case !in.Reason.Valid():
		return nil, invalid("reason", "신고 사유를 선택해 주세요")
	case in.Reason == models.ReasonOther && utf8.RuneCountInString(detail) < MinOtherDetail:
		return nil, invalid("detail", "기타 사유는 5자 이상 입력해 주세요")
	case utf8.RuneCountInString(detail) > MaxDetailLength:
		return nil, invalid("detail", "상세 내용은 1000자를 넘을 수 없습니다")
	case utf8.RuneCountInString(summary) > MaxSummaryLength:
		return nil, invalid("targetSummary", "대상 요약이 너무 깁니다")
	case in.TargetType == models.TargetProfile && in.TargetID == reporterID:
		return nil, invalid("targetId", "본인을 신고할 수 없습니다")
	}

	standing, err := s.ProfileStanding(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if standing.Standing != models.STANDING_GOOD {
		s.metrics.ObserveAction(string(ActionSubmit), "restricted")
		return nil, ErrReporterRestricted
	}

	report := &models.Report{
		TargetType:    in.TargetType,
		TargetID:      in.TargetID,
		TargetSummary: summary,
		Reason:        in.Reason,
		Detail:        detail,
		Status:        models.ReportStatusPending,
		ReporterID:    reporterID,
		ReporterIPv4:  in.ClientIPv4,
		ReporterIPv6:  in.ClientIPv6,
	}
	if err := s.repos.Report.Create(report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	// target report counts of cached siblings changed
	s.invalidateTarget(ctx, report.TargetType, report.TargetID)
	s.metrics.ObserveReport(string(report.TargetType))
	log.Infof("[Moderation] Report %d submitted by profile %d against %s/%d", report.ID, reporterID, report.TargetType, report.TargetID)
	return report, nil
}

// ListReports returns one page of the moderation queue, newest first.
func (s *Service) ListReports(ctx context.Context, filter ListFilter) (*ReportPage, error) {
	f := repository.ReportListFilter{Query: strings.TrimSpace(filter.Query)}
	if filter.TargetType != "" {
		t := models.TargetType(filter.TargetType)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: targetType %q", ErrInvalidFilter, filter.TargetType)
		}
		f.TargetType = t
	}
	if filter.Status != "" {
		st := models.ReportStatus(filter.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, filter.Status)
		}
		f.Status = st
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	f.Offset = (page - 1) * PageSize
	f.Limit = PageSize

	items, total, err := s.repos.Report.List(f)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if items == nil {
		items = []models.Report{}
	}
	return &ReportPage{Items: items, Total: total, Page: page, PageSize: PageSize}, nil
}

// GetReportDetail assembles the detail view, served from cache when possible.
func (s *Service) GetReportDetail(ctx context.Context, reportID uint) (*ReportDetail, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, reportID)
		switch {
		case err != nil:
			s.metrics.ObserveCache("error")
			log.Warnf("[Moderation] Detail cache read failed for report %d: %v", reportID, err)
		case cached != nil:
			s.metrics.ObserveCache("hit")
			return cached, nil
		default:
			s.metrics.ObserveCache("miss")
		}
	}

	var stamp CacheStamp
	cacheable := s.cache != nil
	if cacheable {
		gen, err := s.cache.ReportGeneration(ctx, reportID)
		if err != nil {
			log.Warnf("[Moderation] Detail cache generation read failed for report %d: %v", reportID, err)
			cacheable = false
		}
		stamp.Report = gen
	}

	report, err := s.loadReport(reportID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		gen, err := s.cache.TargetGeneration(ctx, report.TargetType, report.TargetID)
		if err != nil {
			log.Warnf("[Moderation] Detail cache generation read failed for %s/%d: %v", report.TargetType, report.TargetID, err)
			cacheable = false
		}
		stamp.Target = gen
	}

	count, err := s.repos.Report.CountByTarget(report.TargetType, report.TargetID)
	if err != nil {
		return nil, fmt.Errorf("count target reports: %w", err)
	}
	sanctions, err := s.repos.Sanction.ListByTarget(report.TargetType, report.TargetID)
	if err != nil {
		return nil, fmt.Errorf("load sanction history: %w", err)
	}
	items, err := s.repos.Report.ListEvidence(report.ID)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}
	if items == nil {
		items = []models.ReportEvidence{}
	}

	detail := &ReportDetail{
		Report:            report,
		ReasonLabel:       models.ReasonLabel(report.Reason),
		TargetReportCount: count,
		CumulativeWarning: count >= models.CumulativeReportThreshold,
		Sanctions:         toViews(sanctions),
		Evidence:          items,
		Actions:           AvailableActions(report.Status),
		CanProcess:        report.CanProcess(),
	}

	if cacheable {
		err := s.cache.Set(ctx, detail, stamp)
		switch {
		case errors.Is(err, ErrStaleDetail):
			s.metrics.ObserveCache("stale")
		case err != nil:
			log.Warnf("[Moderation] Detail cache write failed for report %d: %v", reportID, err)
		}
	}
	return detail, nil
}

// StartReview moves a pending report to reviewing. confirmed must be true.
func (s *Service) StartReview(ctx context.Context, reportID, moderatorID uint, confirmed bool) (*models.Report, error) {
	if !confirmed {
		return nil, invalid("confirmed", "검토 시작을 확인해 주세요")
	}
	report, err := s.loadReport(reportID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(report.Status, models.ReportStatusReviewing) {
		s.metrics.ObserveAction(string(ActionStartReview), "invalid_transition")
		return nil, fmt.Errorf("start review of report %d in status %s: %w", reportID, report.Status, ErrInvalidTransition)
	}

	if err := s.repos.Report.MarkReviewing(reportID, moderatorID, s.now()); err != nil {
		s.metrics.ObserveAction(string(ActionStartReview), "failed")
		return nil, s.reportWriteError(reportID, "start review", err)
	}

	s.invalidateReport(ctx, reportID)
	s.metrics.ObserveAction(string(ActionStartReview), "ok")
	log.Infof("[Moderation] Report %d under review by %d", reportID, moderatorID)
	return s.loadReport(reportID)
}

// Dismiss closes a report without sanction.
func (s *Service) Dismiss(ctx context.Context, reportID, moderatorID uint, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "기각 사유를 입력해 주세요")
	}
	report, err := s.loadReport(reportID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(report.Status, models.ReportStatusDismissed) {
		s.metrics.ObserveAction(string(ActionDismiss), "invalid_transition")
		return nil, fmt.Errorf("dismiss report %d in status %s: %w", reportID, report.Status, ErrInvalidTransition)
	}

	if err := s.repos.Report.Dismiss(reportID, moderatorID, reason, s.now()); err != nil {
		s.metrics.ObserveAction(string(ActionDismiss), "failed")
		return nil, s.reportWriteError(reportID, "dismiss", err)
	}

	s.invalidateReport(ctx, reportID)
	s.metrics.ObserveAction(string(ActionDismiss), "ok")
	s.notify(ctx, Notice{
		ProfileID:   report.ReporterID,
		Type:        models.NotificationReportDismissed,
		ReferenceID: reportID,
		Content:     fmt.Sprintf("신고하신 내용(%s)이 검토 후 기각되었습니다. 사유: %s", models.ReasonLabel(report.Reason), reason),
	})
	log.Infof("[Moderation] Report %d dismissed by %d", reportID, moderatorID)
	return s.loadReport(reportID)
}

// Resolve closes a report and, if requested, issues a sanction in the same
// transaction. A permanent ban needs a confirmation token from a prior call.
func (s *Service) Resolve(ctx context.Context, reportID, moderatorID uint, in ResolveInput) (*ResolveResult, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, invalid("reason", "처리 사유를 입력해 주세요")
	}
	report, err := s.loadReport(reportID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(report.Status, models.ReportStatusResolved) {
		s.metrics.ObserveAction(string(ActionResolve), "invalid_transition")
		return nil, fmt.Errorf("resolve report %d in status %s: %w", reportID, report.Status, ErrInvalidTransition)
	}

	now := s.now()
	var sanction *models.Sanction
	if in.Sanction != nil {
		sanction, err = buildSanction(report, *in.Sanction, reason, moderatorID, now)
		if err != nil {
			return nil, err
		}
		if sanction.SanctionType == models.SanctionPermanentBan {
			if err := s.checkConfirmation(reportID, moderatorID, string(sanction.SanctionType), in.ConfirmToken); err != nil {
				s.metrics.ObserveAction(string(ActionResolve), "confirmation_required")
				return nil, err
			}
		}
	}

	if err := s.repos.Report.Resolve(reportID, moderatorID, reason, now, sanction); err != nil {
		s.metrics.ObserveAction(string(ActionResolve), "failed")
		return nil, s.reportWriteError(reportID, "resolve", err)
	}

	s.invalidateReport(ctx, reportID)
	s.metrics.ObserveAction(string(ActionResolve), "ok")
	s.notify(ctx, Notice{
		ProfileID:   report.ReporterID,
		Type:        models.NotificationReportResolved,
		ReferenceID: reportID,
		Content:     fmt.Sprintf("신고하신 내용(%s)이 처리되었습니다.", models.ReasonLabel(report.Reason)),
	})

	if sanction != nil {
		// every detail of this target shows the sanction history
		s.invalidateTarget(ctx, sanction.TargetType, sanction.TargetID)
		s.metrics.ObserveSanction(string(sanction.SanctionType))
		if sanction.TargetType == models.TargetProfile {
			s.notify(ctx, Notice{
				ProfileID:   sanction.TargetID,
				Type:        models.NotificationSanctionIssued,
				ReferenceID: sanction.ID,
				Content:     sanctionIssuedText(sanction),
			})
		}
		log.Infof("[Moderation] Report %d resolved by %d with %s sanction %d", reportID, moderatorID, sanction.SanctionType, sanction.ID)
	} else {
		log.Infof("[Moderation] Report %d resolved by %d without sanction", reportID, moderatorID)
	}

	updated, err := s.loadReport(reportID)
	if err != nil {
		return nil, err
	}
	return &ResolveResult{Report: updated, Sanction: sanction}, nil
}

// RevokeSanction lifts an active sanction.
func (s *Service) RevokeSanction(ctx context.Context, sanctionID, moderatorID uint, reason string) (*models.Sanction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "해제 사유를 입력해 주세요")
	}
	sanction, err := s.loadSanction(sanctionID)
	if err != nil {
		return nil, err
	}
	if !sanction.CanRevoke() {
		s.metrics.ObserveAction(string(ActionRevoke), "not_active")
		return nil, fmt.Errorf("revoke sanction %d in status %s: %w", sanctionID, sanction.Status, ErrSanctionNotActive)
	}

	if err := s.repos.Sanction.Revoke(sanctionID, moderatorID, reason, s.now()); err != nil {
		s.metrics.ObserveAction(string(ActionRevoke), "failed")
		switch {
		case errors.Is(err, repository.ErrStateConflict):
			return nil, fmt.Errorf("revoke sanction %d: %w", sanctionID, ErrSanctionNotActive)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrSanctionNotFound
		}
		return nil, fmt.Errorf("revoke sanction %d: %w", sanctionID, err)
	}

	s.invalidateTarget(ctx, sanction.TargetType, sanction.TargetID)
	s.metrics.ObserveAction(string(ActionRevoke), "ok")
	if sanction.TargetType == models.TargetProfile {
		s.notify(ctx, Notice{
			ProfileID:   sanction.TargetID,
			Type:        models.NotificationSanctionRevoked,
			ReferenceID: sanction.ID,
			Content:     fmt.Sprintf("%s 제재가 해제되었습니다. 사유: %s", sanction.SanctionType.Label(), reason),
		})
	}
	log.Infof("[Moderation] Sanction %d revoked by %d", sanctionID, moderatorID)
	return s.loadSanction(sanctionID)
}

// SanctionHistory lists every sanction recorded against a target, newest first.
func (s *Service) SanctionHistory(ctx context.Context, targetType models.TargetType, targetID uint) ([]SanctionView, error) {
	if !targetType.Valid() || targetID == 0 {
		return nil, fmt.Errorf("%w: target %s/%d", ErrInvalidFilter, targetType, targetID)
	}
	sanctions, err := s.repos.Sanction.ListByTarget(targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("load sanction history: %w", err)
	}
	return toViews(sanctions), nil
}

// ProfileStanding derives a profile's standing from its active sanctions.
func (s *Service) ProfileStanding(ctx context.Context, profileID uint) (*Standing, error) {
	if _, err := s.repos.Profile.GetByID(profileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile %d: %w", profileID, err)
	}
	active, err := s.repos.Sanction.ListActiveByTarget(models.TargetProfile, profileID)
	if err != nil {
		return nil, fmt.Errorf("load active sanctions: %w", err)
	}
	standing, until := deriveStanding(active, s.now())
	return &Standing{
		ProfileID:       profileID,
		Standing:        standing,
		SuspendedUntil:  until,
		ActiveSanctions: toViews(active),
	}, nil
}

// ExpireDueSanctions moves active suspensions past their end time to expired
// and returns how many were expired.
func (s *Service) ExpireDueSanctions(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = DefaultExpiryBatch
	}
	now := s.now()
	due, err := s.repos.Sanction.ListDueForExpiry(now, batch)
	if err != nil {
		return 0, fmt.Errorf("list due sanctions: %w", err)
	}

	expired := 0
	for i := range due {
		sanction := &due[i]
		if err := s.repos.Sanction.MarkExpired(sanction.ID, now); err != nil {
			// revoked or expired concurrently
			if errors.Is(err, repository.ErrStateConflict) || errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.metrics.ObserveExpired(expired)
			return expired, fmt.Errorf("expire sanction %d: %w", sanction.ID, err)
		}
		expired++
		s.invalidateTarget(ctx, sanction.TargetType, sanction.TargetID)
		if sanction.TargetType == models.TargetProfile {
			s.notify(ctx, Notice{
				ProfileID:   sanction.TargetID,
				Type:        models.NotificationSanctionExpired,
				ReferenceID: sanction.ID,
				Content:     fmt.Sprintf("%s 기간이 종료되었습니다.", sanction.SanctionType.Label()),
			})
		}
	}

	s.metrics.ObserveExpired(expired)
	if expired > 0 {
		log.Infof("[Moderation] Expired %d of %d due sanctions", expired, len(due))
	}
	return expired, nil
}

// AttachEvidence stores a file for a report. Only the reporter may attach,
// and only while the report is still open.
func (s *Service) AttachEvidence(ctx context.Context, reportID, uploaderID uint, up EvidenceUpload) (*models.ReportEvidence, error) {
	if s.evidence == nil {
		return nil, ErrEvidenceDisabled
	}
	if err := evidence.ValidateSize(up.Size); err != nil {
		return nil, invalid("file", err.Error())
	}
	if !evidence.IsAllowedContentType(up.ContentType) {
		return nil, invalid("file", evidence.ErrUnsupportedType.Error())
	}

	report, err := s.loadReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != uploaderID {
		return nil, ErrNotReporter
	}
	if !report.CanProcess() {
		return nil, fmt.Errorf("attach evidence to report %d in status %s: %w", reportID, report.Status, ErrInvalidTransition)
	}

	fileName := evidence.TrimFileName(up.FileName)
	key := evidence.ObjectKey(reportID, fileName)
	if err := s.evidence.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		s.metrics.ObserveAction(string(ActionEvidence), "failed")
		return nil, fmt.Errorf("store evidence: %w", err)
	}

	item := &models.ReportEvidence{
		ReportID:     reportID,
		ObjectKey:    key,
		FileName:     fileName,
		ContentType:  up.ContentType,
		Size:         up.Size,
		UploadedByID: uploaderID,
	}
	if err := s.repos.Report.AddEvidence(item); err != nil {
		s.metrics.ObserveAction(string(ActionEvidence), "failed")
		// the row is the only reference to the object
		if delErr := s.evidence.Delete(ctx, key); delErr != nil {
			log.Errorf("[Moderation] Orphaned evidence object %s for report %d: %v", key, reportID, delErr)
		}
		return nil, fmt.Errorf("record evidence: %w", err)
	}

	s.invalidateReport(ctx, reportID)
	s.metrics.ObserveAction(string(ActionEvidence), "ok")
	return item, nil
}

// EvidenceURL returns a short-lived download link for one evidence file.
func (s *Service) EvidenceURL(ctx context.Context, reportID, evidenceID uint) (string, error) {
	if s.evidence == nil {
		return "", ErrEvidenceDisabled
	}
	items, err := s.repos.Report.ListEvidence(reportID)
	if err != nil {
		return "", fmt.Errorf("load evidence: %w", err)
	}
	for _, item := range items {
		if item.ID == evidenceID {
			return s.evidence.PresignGet(ctx, item.ObjectKey, evidenceURLTTL)
		}
	}
	return "", ErrEvidenceNotFound
}

func (s *Service) loadReport(id uint) (*models.Report, error) {
	report, err := s.repos.Report.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("load report %d: %w", id, err)
	}
	return report, nil
}

func (s *Service) loadSanction(id uint) (*models.Sanction, error) {
	sanction, err := s.repos.Sanction.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSanctionNotFound
		}
		return nil, fmt.Errorf("load sanction %d: %w", id, err)
	}
	return sanction, nil
}

// reportWriteError maps conditional-update failures onto domain errors. A
// conflict here means another moderator won the race after our status check.
func (s *Service) reportWriteError(reportID uint, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrStateConflict):
		return fmt.Errorf("%s report %d: %w", op, reportID, ErrInvalidTransition)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrReportNotFound
	}
	return fmt.Errorf("%s report %d: %w", op, reportID, err)
}

func (s *Service) checkConfirmation(reportID, moderatorID uint, action, token string) error {
	if s.confirm == nil {
		return errors.New("confirmation signer is not configured")
	}
	if token != "" {
		err := s.confirm.Verify(token, reportID, moderatorID, action)
		if err == nil {
			return nil
		}
		log.Warnf("[Moderation] Rejected confirmation token for report %d by %d: %v", reportID, moderatorID, err)
	}

	fresh, expiresAt, err := s.confirm.Issue(reportID, moderatorID, action)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}
	return &ConfirmationRequiredError{Action: action, Token: fresh, ExpiresAt: expiresAt}
}

func (s *Service) invalidateReport(ctx context.Context, reportID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReport(ctx, reportID); err != nil {
		log.Warnf("[Moderation] Failed to invalidate detail cache for report %d: %v", reportID, err)
	}
}

func (s *Service) invalidateTarget(ctx context.Context, targetType models.TargetType, targetID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTarget(ctx, targetType, targetID); err != nil {
		log.Warnf("[Moderation] Failed to invalidate detail cache for %s/%d: %v", targetType, targetID, err)
	}
}

func (s *Service) notify(ctx context.Context, notice Notice) {
	if s.notifier == nil || notice.ProfileID == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		log.Errorf("[Moderation] Failed to queue %s notice for profile %d: %v", notice.Type, notice.ProfileID, err)
	}
}

func toViews(sanctions []models.Sanction) []SanctionView {
	views := make([]SanctionView, 0, len(sanctions))
	for _, sn := range sanctions {
		views = append(views, SanctionView{Sanction: sn, CanRevoke: sn.CanRevoke()})
	}
	return views
}

func sanctionIssuedText(s *models.Sanction) string {
	text := fmt.Sprintf("%s 제재가 적용되었습니다. 사유: %s", s.SanctionType.Label(), s.Reason)
	if s.EndsAt != nil {
		text += fmt.Sprintf(" (해제 예정: %s)", s.EndsAt.Format("2006-01-02 15:04"))
	}
	return text
}
