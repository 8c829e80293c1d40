package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-gms/forms"
	"campus-gms/models"
	"campus-gms/types"
)

func TestIssueService_CreateStampsReporter(t *testing.T) {
	env := newTestEnv(t)
	rec := &recordingNotifier{}
	env.issues.SetNotifier(rec)
	student := env.user(t, "21CS010", models.RoleStudent)

	sub := classroomComplaint("  A ", "2")
	sub.RaisedBy = types.Reporter{Name: "Someone Else", ID: "99XX999"}
	issue, err := env.issues.Create(context.Background(), student, sub)
	require.NoError(t, err)

	assert.Regexp(t, `^GMS-[0-9A-F]{8}$`, issue.Ticket)
	assert.Equal(t, "Classroom", issue.ActionItem)
	assert.Equal(t, "A", issue.Block)
	assert.Equal(t, models.IssueOpen, issue.Status)
	assert.Equal(t, student.FullName, issue.ReporterName)
	assert.Equal(t, "21CS010", issue.ReporterID)

	events, err := env.issues.Events(context.Background(), issue.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.IssueOpen, events[0].ToStatus)

	require.Len(t, rec.created, 1)
	assert.Equal(t, issue.Ticket, rec.created[0].Ticket)
}

func TestIssueService_CreateValidates(t *testing.T) {
	env := newTestEnv(t)
	student := env.user(t, "21CS011", models.RoleStudent)
	ctx := context.Background()

	sub := classroomComplaint("A", "")
	sub.Comments = ""
	_, err := env.issues.Create(ctx, student, sub)
	require.ErrorIs(t, err, forms.ErrValidation)
	var ve *forms.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"floor", "comments"}, ve.Missing)

	sub = classroomComplaint("A", "1")
	sub.ActionItem = "Lift"
	_, err = env.issues.Create(ctx, student, sub)
	assert.ErrorIs(t, err, forms.ErrValidation)

	sub = classroomComplaint("A", "1")
	sub.Category = "parking"
	_, err = env.issues.Create(ctx, student, sub)
	assert.Error(t, err)

	require.NoError(t, env.categories.SetActive(ctx, "classroom", false))
	_, err = env.issues.Create(ctx, student, classroomComplaint("A", "1"))
	assert.ErrorIs(t, err, ErrCategoryDisabled)
}

func TestIssueService_Feedback(t *testing.T) {
	env := newTestEnv(t)
	student := env.user(t, "21CS012", models.RoleStudent)

	sub := types.IssueSubmission{
		Category: "water_dispenser",
		Type:     "feedback",
		Block:    "C",
		Floor:    "G",
		Ratings:  map[string]int{"water_quality": 3, "cleanliness": 2},
	}
	issue, err := env.issues.Create(context.Background(), student, sub)
	require.NoError(t, err)

	view := issue.View(student.ID)
	assert.Equal(t, "Feedback", view.Type)
	assert.Equal(t, "Feedback", view.IssueCat)
	assert.Equal(t, map[string]int{"water_quality": 3, "cleanliness": 2}, view.Ratings)

	sub.Ratings["water_quality"] = 4
	_, err = env.issues.Create(context.Background(), student, sub)
	assert.ErrorIs(t, err, forms.ErrValidation, "water dispensers rate out of 3")
}

func TestIssueService_Similar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	student := env.user(t, "21CS013", models.RoleStudent)
	staff := env.user(t, "ST001", models.RoleResponder)

	a2, err := env.issues.Create(ctx, student, classroomComplaint("A", "2"))
	require.NoError(t, err)
	_, err = env.issues.Create(ctx, student, classroomComplaint("B", "2"))
	require.NoError(t, err)
	done, err := env.issues.Create(ctx, student, classroomComplaint("a", "2"))
	require.NoError(t, err)
	_, err = env.issues.UpdateStatus(ctx, staff, done.Ticket, types.StatusUpdate{Status: "resolved"})
	require.NoError(t, err)

	got, err := env.issues.Similar(ctx, types.SimilarQuery{ActionItem: "Classroom", Block: " a ", Floor: "2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a2.ID, got[0].ID)

	got, err = env.issues.Similar(ctx, types.SimilarQuery{ActionItem: "Classroom", Block: "A", Floor: "3"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = env.issues.Similar(ctx, types.SimilarQuery{ActionItem: "Lift", Block: "A"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = env.issues.Similar(ctx, types.SimilarQuery{ActionItem: "Classroom"})
	assert.ErrorIs(t, err, ErrIncompleteLocation)
}

func TestIssueService_Workflow(t *testing.T) {
	env := newTestEnv(t)
	rec := &recordingNotifier{}
	env.issues.SetNotifier(rec)
	ctx := context.Background()
	student := env.user(t, "21CS014", models.RoleStudent)
	other := env.user(t, "21CS015", models.RoleStudent)
	staff := env.user(t, "ST002", models.RoleResponder)

	issue, err := env.issues.Create(ctx, student, classroomComplaint("D", "1"))
	require.NoError(t, err)

	_, err = env.issues.UpdateStatus(ctx, student, issue.Ticket, types.StatusUpdate{Status: "resolved"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "closed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "in_progress", Note: "technician assigned"})
	require.NoError(t, err)
	assert.Equal(t, models.IssueInProgress, updated.Status)

	updated, err = env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "resolved"})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)

	_, err = env.issues.UpdateStatus(ctx, other, issue.Ticket, types.StatusUpdate{Status: "closed"})
	assert.ErrorIs(t, err, ErrForbidden)
	updated, err = env.issues.UpdateStatus(ctx, student, issue.Ticket, types.StatusUpdate{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, models.IssueClosed, updated.Status)
	assert.NotNil(t, updated.ClosedAt)

	events, err := env.issues.Events(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "technician assigned", events[1].Note)

	// the reporter is notified of staff changes only
	notes, err := env.notifications.List(ctx, student.ID, false, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Equal(t, []models.IssueStatus{models.IssueOpen, models.IssueInProgress, models.IssueResolved}, rec.from)

	reloaded, err := env.issues.Get(ctx, "  "+issue.Ticket[4:])
	assert.ErrorIs(t, err, ErrIssueNotFound)
	assert.Nil(t, reloaded)
	reloaded, err = env.issues.Get(ctx, "gms-"+issue.Ticket[4:])
	require.NoError(t, err)
	assert.Equal(t, issue.ID, reloaded.ID)
}

func TestIssueService_ConcurrentStatusChange(t *testing.T) {
	env := newTestEnv(t)
	rec := &recordingNotifier{}
	env.issues.SetNotifier(rec)
	ctx := context.Background()
	student := env.user(t, "21CS014", models.RoleStudent)
	staff := env.user(t, "ST002", models.RoleResponder)

	issue, err := env.issues.Create(ctx, student, classroomComplaint("D", "1"))
	require.NoError(t, err)
	stale, err := env.issues.Get(ctx, issue.Ticket)
	require.NoError(t, err)
	require.Equal(t, models.IssueOpen, stale.Status)

	// another responder moves it first
	require.NoError(t, env.db.Model(&models.Issue{}).Where("id = ?", issue.ID).
		Update("status", models.IssueInProgress).Error)

	actorID := staff.ID
	err = env.issues.transition(ctx, stale, models.IssueResolved, "", &actorID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.IssueOpen, stale.Status)

	_, err = env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "resolved", From: "open"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "resolved", From: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	reloaded, err := env.issues.Get(ctx, issue.Ticket)
	require.NoError(t, err)
	assert.Equal(t, models.IssueInProgress, reloaded.Status)
	assert.Nil(t, reloaded.ResolvedAt)

	// only the creation event exists; nobody was notified
	events, err := env.issues.Events(ctx, issue.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	notes, err := env.notifications.List(ctx, student.ID, false, 0)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Empty(t, rec.from)

	updated, err := env.issues.UpdateStatus(ctx, staff, issue.Ticket, types.StatusUpdate{Status: "resolved", From: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, models.IssueResolved, updated.Status)
}

func TestIssueService_ListAndMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s1 := env.user(t, "21CS016", models.RoleStudent)
	s2 := env.user(t, "21CS017", models.RoleStudent)

	for i := 0; i < 3; i++ {
		_, err := env.issues.Create(ctx, s1, classroomComplaint("E", "1"))
		require.NoError(t, err)
	}
	_, err := env.issues.Create(ctx, s2, classroomComplaint("F", "1"))
	require.NoError(t, err)

	mine, err := env.issues.ListMine(ctx, s1.ID, "")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	mine, err = env.issues.ListMine(ctx, s1.ID, "resolved")
	require.NoError(t, err)
	assert.Empty(t, mine)
	_, err = env.issues.ListMine(ctx, s1.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	page, p, err := env.issues.List(ctx, IssueFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.EqualValues(t, 4, p.Total)
	assert.EqualValues(t, 2, p.TotalPages)

	page, p, err = env.issues.List(ctx, IssueFilter{Block: "f"})
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.EqualValues(t, 1, p.Total)
}

func TestIssueService_AnonymousView(t *testing.T) {
	env := newTestEnv(t)
	student := env.user(t, "21CS018", models.RoleStudent)

	sub := classroomComplaint("G", "1")
	sub.Anonymous = true
	issue, err := env.issues.Create(context.Background(), student, sub)
	require.NoError(t, err)

	assert.Nil(t, issue.View(0).RaisedBy)
	require.NotNil(t, issue.View(student.ID).RaisedBy)
	assert.Equal(t, "21CS018", issue.View(student.ID).RaisedBy.ID)
}

func TestIssueService_AutoClose(t *testing.T) {
	env := newTestEnv(t)
	rec := &recordingNotifier{}
	env.issues.SetNotifier(rec)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	student := env.user(t, "21CS019", models.RoleStudent)
	staff := env.user(t, "ST003", models.RoleAdmin)

	env.issues.now = fixedClock(base.Add(-10 * 24 * time.Hour))
	old, err := env.issues.Create(ctx, student, classroomComplaint("H", "1"))
	require.NoError(t, err)
	_, err = env.issues.UpdateStatus(ctx, staff, old.Ticket, types.StatusUpdate{Status: "resolved"})
	require.NoError(t, err)

	env.issues.now = fixedClock(base.Add(-time.Hour))
	fresh, err := env.issues.Create(ctx, student, classroomComplaint("H", "2"))
	require.NoError(t, err)
	_, err = env.issues.UpdateStatus(ctx, staff, fresh.Ticket, types.StatusUpdate{Status: "resolved"})
	require.NoError(t, err)

	env.issues.now = fixedClock(base)
	n, err := env.issues.AutoClose(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.issues.Get(ctx, old.Ticket)
	require.NoError(t, err)
	assert.Equal(t, models.IssueClosed, got.Status)
	got, err = env.issues.Get(ctx, fresh.Ticket)
	require.NoError(t, err)
	assert.Equal(t, models.IssueResolved, got.Status)

	events, err := env.issues.Events(ctx, old.ID)
	require.NoError(t, err)
	assert.Nil(t, events[len(events)-1].ActorID)
}
