package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-gms/forms"
	"campus-gms/models"
	"campus-gms/types"
)

var (
	ErrIssueNotFound      = errors.New("issue not found")
	ErrInvalidStatus      = errors.New("unknown issue status")
	ErrInvalidTransition  = errors.New("status change not allowed")
	ErrForbidden          = errors.New("not allowed")
	ErrIncompleteLocation = errors.New("action item and block are required")
)

// IssueNotifier pushes issue changes to connected clients.
type IssueNotifier interface {
	IssueCreated(issue *models.Issue)
	IssueStatusChanged(issue *models.Issue, from models.IssueStatus)
}

type nopNotifier struct{}

func (nopNotifier) IssueCreated(*models.Issue)                          {}
func (nopNotifier) IssueStatusChanged(*models.Issue, models.IssueStatus) {}

// IssueService files grievances and moves them through the workflow.
type IssueService struct {
	db            *gorm.DB
	categories    *CategoryService
	notifications *NotificationService
	notifier      IssueNotifier
	logger        *zap.Logger
	now           func() time.Time
}

func NewIssueService(db *gorm.DB, categories *CategoryService, notifications *NotificationService, logger *zap.Logger) *IssueService {
	return &IssueService{
		db:            db,
		categories:    categories,
		notifications: notifications,
		notifier:      nopNotifier{},
		logger:        logger,
		now:           time.Now,
	}
}

// SetNotifier installs the live notifier. nil restores the no-op one.
func (s *IssueService) SetNotifier(n IssueNotifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Create validates sub with the same rules the client form applies and
// stores it. The reporter is always the signed-in user, whatever the
// payload claims.
func (s *IssueService) Create(ctx context.Context, user *models.User, sub types.IssueSubmission) (*models.Issue, error) {
	form, err := s.categories.Form(ctx, sub.Category)
	if err != nil {
		return nil, err
	}
	def := form.Definition()
	if sub.ActionItem != "" && sub.ActionItem != def.ActionItem {
		return nil, &forms.ValidationError{Invalid: []string{"action_item"}}
	}

	st := form.FromSubmission(sub)
	if err := form.Validate(st); err != nil {
		return nil, err
	}
	clean := form.Payload(st, types.Reporter{Name: user.FullName, ID: user.StudentID})

	issue := models.Issue{
		CategoryKey:  def.Key,
		ActionItem:   def.ActionItem,
		Type:         clean.Type,
		Domain:       clean.Domain,
		Block:        clean.Block,
		Floor:        clean.Floor,
		Room:         clean.Room,
		Comments:     clean.Comments,
		Anonymous:    clean.Anonymous,
		RaisedByID:   user.ID,
		ReporterName: clean.RaisedBy.Name,
		ReporterID:   clean.RaisedBy.ID,
		Status:       models.IssueOpen,
	}
	issue.SetFields(clean.Fields)
	issue.SetRatings(clean.Ratings)
	issue.SetAttachments(clean.Attachments)
	if def.Bookkeeping && clean.CreatedAt != nil && !clean.CreatedAt.IsZero() {
		t := *clean.CreatedAt
		issue.DraftCreatedAt = &t
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&issue).Error; err != nil {
			return fmt.Errorf("create issue: %w", err)
		}
		ev := models.IssueEvent{IssueID: issue.ID, ToStatus: models.IssueOpen, ActorID: &user.ID, Note: "reported"}
		return tx.Create(&ev).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("📝 Issue reported",
		zap.String("ticket", issue.Ticket),
		zap.String("category", issue.CategoryKey),
		zap.String("type", issue.Type),
		zap.Uint("user_id", user.ID))
	s.notifier.IssueCreated(&issue)
	return &issue, nil
}

// Similar returns active issues at the same location, newest first. Block
// matching ignores case and surrounding space; floor is only compared when
// given.
func (s *IssueService) Similar(ctx context.Context, q types.SimilarQuery) ([]models.Issue, error) {
	q.ActionItem = strings.TrimSpace(q.ActionItem)
	q.Block = strings.TrimSpace(q.Block)
	q.Floor = strings.TrimSpace(q.Floor)
	if q.ActionItem == "" || q.Block == "" {
		return nil, ErrIncompleteLocation
	}

	db := s.db.WithContext(ctx).
		Where("action_item = ?", q.ActionItem).
		Where("LOWER(TRIM(block)) = LOWER(?)", q.Block).
		Where("status IN ?", models.ActiveIssueStatuses)
	if q.Floor != "" {
		db = db.Where("floor = ?", q.Floor)
	}

	var issues []models.Issue
	if err := db.Order("created_at DESC, id DESC").Limit(20).Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// ListMine returns the issues a user filed, optionally filtered by status.
func (s *IssueService) ListMine(ctx context.Context, userID uint, status string) ([]models.Issue, error) {
	db := s.db.WithContext(ctx).Where("raised_by_id = ?", userID)
	if status != "" {
		st, ok := models.ParseIssueStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		db = db.Where("status = ?", st)
	}
	var issues []models.Issue
	err := db.Order("created_at DESC, id DESC").Find(&issues).Error
	return issues, err
}

// IssueFilter narrows the staff issue listing.
type IssueFilter struct {
	Status     string
	Category   string
	ActionItem string
	Block      string
	Page       int
	Limit      int
}

// List pages through all issues for staff.
func (s *IssueService) List(ctx context.Context, f IssueFilter) ([]models.Issue, types.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	db := s.db.WithContext(ctx).Model(&models.Issue{})
	if f.Status != "" {
		st, ok := models.ParseIssueStatus(f.Status)
		if !ok {
			return nil, types.Pagination{}, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
		}
		db = db.Where("status = ?", st)
	}
	if f.Category != "" {
		db = db.Where("category_key = ?", f.Category)
	}
	if f.ActionItem != "" {
		db = db.Where("action_item = ?", f.ActionItem)
	}
	if f.Block != "" {
		db = db.Where("LOWER(TRIM(block)) = LOWER(?)", strings.TrimSpace(f.Block))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, err
	}
	var issues []models.Issue
	err := db.Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&issues).Error
	if err != nil {
		return nil, types.Pagination{}, err
	}

	pages := (total + int64(f.Limit) - 1) / int64(f.Limit)
	return issues, types.Pagination{Page: f.Page, Limit: f.Limit, Total: total, TotalPages: pages}, nil
}

// Get finds an issue by numeric id or ticket code.
func (s *IssueService) Get(ctx context.Context, ref string) (*models.Issue, error) {
	ref = strings.TrimSpace(ref)
	db := s.db.WithContext(ctx)
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		db = db.Where("id = ?", id)
	} else {
		db = db.Where("ticket = ?", strings.ToUpper(ref))
	}

	var issue models.Issue
	err := db.First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// CanView reports whether user may read issue.
func CanView(user *models.User, issue *models.Issue) bool {
	return user.IsStaff() || issue.RaisedByID == user.ID
}

// UpdateStatus moves an issue along the workflow. Staff may make any
// allowed transition; the reporter may only close or reopen a resolved
// issue.
func (s *IssueService) UpdateStatus(ctx context.Context, actor *models.User, ref string, upd types.StatusUpdate) (*models.Issue, error) {
	next, ok := models.ParseIssueStatus(upd.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, upd.Status)
	}
	issue, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	from := issue.Status

	if !actor.IsStaff() {
		ownerMove := issue.RaisedByID == actor.ID && from == models.IssueResolved &&
			(next == models.IssueClosed || next == models.IssueInProgress)
		if !ownerMove {
			return nil, ErrForbidden
		}
	}
	if upd.From != "" {
		seen, ok := models.ParseIssueStatus(upd.From)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, upd.From)
		}
		if seen != from {
			return nil, fmt.Errorf("%w: issue is %s, not %s", ErrInvalidTransition, from, seen)
		}
	}
	if !from.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}

	actorID := actor.ID
	if err := s.transition(ctx, issue, next, strings.TrimSpace(upd.Note), &actorID); err != nil {
		return nil, err
	}
	s.logger.Info("🔄 Issue status changed",
		zap.String("ticket", issue.Ticket),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.Uint("actor_id", actor.ID))
	s.notifier.IssueStatusChanged(issue, from)
	return issue, nil
}

// transition writes the new status, its history event and the reporter's
// notification in one transaction. The update is conditional on the status
// still being the one read, so concurrent changes do not overwrite each
// other.
func (s *IssueService) transition(ctx context.Context, issue *models.Issue, next models.IssueStatus, note string, actorID *uint) error {
	from := issue.Status
	now := s.now()
	updates := map[string]any{"status": next, "updated_at": now}
	switch next {
	case models.IssueResolved:
		updates["resolved_at"] = now
	case models.IssueClosed, models.IssueRejected:
		updates["closed_at"] = now
	case models.IssueOpen, models.IssueInProgress:
		updates["resolved_at"] = nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Issue{}).Where("id = ? AND status = ?", issue.ID, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: issue changed concurrently", ErrInvalidTransition)
		}
		ev := models.IssueEvent{IssueID: issue.ID, FromStatus: from, ToStatus: next, Note: note, ActorID: actorID}
		if err := tx.Create(&ev).Error; err != nil {
			return err
		}
		if actorID != nil && *actorID == issue.RaisedByID {
			return nil
		}
		body := fmt.Sprintf("Your report %s is now %s.", issue.Ticket, strings.ReplaceAll(string(next), "_", " "))
		if note != "" {
			body += " " + note
		}
		return s.notifications.Notify(tx, issue.RaisedByID, models.NotificationIssueStatus,
			"Report updated", body,
			map[string]any{"issue_id": issue.ID, "ticket": issue.Ticket, "status": next})
	})
	if err != nil {
		return err
	}

	issue.Status = next
	issue.UpdatedAt = now
	switch next {
	case models.IssueResolved:
		issue.ResolvedAt = &now
	case models.IssueClosed, models.IssueRejected:
		issue.ClosedAt = &now
	case models.IssueOpen, models.IssueInProgress:
		issue.ResolvedAt = nil
	}
	return nil
}

// Events returns an issue's status history, oldest first.
func (s *IssueService) Events(ctx context.Context, issueID uint) ([]models.IssueEvent, error) {
	var events []models.IssueEvent
	err := s.db.WithContext(ctx).Where("issue_id = ?", issueID).Order("created_at ASC, id ASC").Find(&events).Error
	return events, err
}

// AutoClose closes issues that have been resolved for longer than after.
func (s *IssueService) AutoClose(ctx context.Context, after time.Duration) (int, error) {
	var stale []models.Issue
	cutoff := s.now().Add(-after)
	if err := s.db.WithContext(ctx).
		Where("status = ? AND resolved_at < ?", models.IssueResolved, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	closed := 0
	for i := range stale {
		issue := &stale[i]
		err := s.transition(ctx, issue, models.IssueClosed, "closed automatically after resolution", nil)
		if errors.Is(err, ErrInvalidTransition) {
			continue
		}
		if err != nil {
			return closed, err
		}
		closed++
		s.notifier.IssueStatusChanged(issue, models.IssueResolved)
	}
	if closed > 0 {
		s.logger.Info("✅ Auto-closed resolved issues", zap.Int("count", closed))
	}
	return closed, nil
}
