package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-gms/catalog"
	"campus-gms/client"
	"campus-gms/config"
	"campus-gms/database"
	"campus-gms/forms"
	"campus-gms/models"
	"campus-gms/services"
	"campus-gms/types"
	"campus-gms/utils"
	"campus-gms/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, file io.Reader, folder, name string) (*types.Attachment, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &types.Attachment{
		URL:      "https://cdn.test/" + folder + "/" + name,
		PublicID: folder + "/" + name,
		Bytes:    len(data),
	}, nil
}

type testServer struct {
	url string
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(sqlite.Open("file::memory:"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}, RequestsPerMinute: 6000},
		JWT:    config.JWTConfig{Secret: "routes-test", ExpiryHours: 1, RefreshExpiryDays: 1, Issuer: "gms-test"},
	}
	cat, err := catalog.Default()
	require.NoError(t, err)

	jwt := services.NewJWTService(db, cfg.JWT, log)
	categories := services.NewCategoryService(db, cat, log)
	require.NoError(t, categories.Sync(context.Background()))
	notifications := services.NewNotificationService(db, log)
	issues := services.NewIssueService(db, categories, notifications, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(log)
	go hub.Run(ctx)
	issues.SetNotifier(websocket.NewIssueBroadcaster(hub))

	router := Setup(Deps{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		JWT:           jwt,
		Auth:          services.NewAuthService(db, jwt, log),
		Categories:    categories,
		Issues:        issues,
		LostFound:     services.NewLostFoundService(db, notifications, log),
		Notifications: notifications,
		Media:         services.NewMediaService(fakeUploader{}, "gms", log),
		Hub:           hub,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{url: srv.URL, db: db}
}

func (s *testServer) signUp(t *testing.T, studentID string) *client.Client {
	t.Helper()
	c := client.New(s.url)
	_, err := c.SignUp(context.Background(), types.SignUpRequest{
		StudentID:       studentID,
		FullName:        "Student " + studentID,
		Password:        "campus123",
		ConfirmPassword: "campus123",
	})
	require.NoError(t, err)
	return c
}

func (s *testServer) staff(t *testing.T, studentID string, role models.UserRole) *client.Client {
	t.Helper()
	hash, err := utils.HashPassword("staffpass1")
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.User{
		StudentID: studentID, FullName: "Staff " + studentID, PasswordHash: hash, Role: role, IsActive: true,
	}).Error)
	c := client.New(s.url)
	_, err = c.SignIn(context.Background(), studentID, "staffpass1")
	require.NoError(t, err)
	return c
}

func (s *testServer) get(t *testing.T, c *client.Client, path string) (int, types.Envelope) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url+path, nil)
	require.NoError(t, err)
	if c != nil {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken())
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env types.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Get(s.url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestIssueLifecycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	student := s.signUp(t, "21CS100")
	responder := s.staff(t, "ST100", models.RoleResponder)

	cat, err := student.Categories(ctx)
	require.NoError(t, err)
	def, err := cat.Get("classroom")
	require.NoError(t, err)

	form := forms.New(def)
	st := form.ReduceAll(form.Initial(),
		forms.SetOptionType{Type: catalog.OptionComplaint},
		forms.SetDomain{Domain: "Furniture"},
		forms.SetFormData{Values: map[string]string{"block": "B", "floor": "3", "room": "305", "comments": "broken bench"}},
	)
	require.NoError(t, form.Validate(st))

	created, err := student.SubmitIssue(ctx, form.Payload(st, types.Reporter{Name: "ignored", ID: "ignored"}))
	require.NoError(t, err)
	ticket := created["ticket"].(string)
	assert.Equal(t, "open", created["status"])
	assert.Equal(t, "Furniture", created["issue_cat"])
	assert.Equal(t, "21CS100", created["raised_by"].(map[string]any)["id"])

	similar, err := responder.SimilarIssues(ctx, types.SimilarQuery{ActionItem: "Classroom", Block: "b", Floor: "3"})
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, ticket, similar[0].Ticket)

	_, err = student.UpdateIssueStatus(ctx, similar[0].ID, types.StatusUpdate{Status: "resolved"})
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	updated, err := responder.UpdateIssueStatus(ctx, similar[0].ID, types.StatusUpdate{Status: "in_progress", Note: "on it"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)

	_, err = responder.UpdateIssueStatus(ctx, similar[0].ID, types.StatusUpdate{Status: "closed"})
	assert.True(t, client.IsStatus(err, http.StatusConflict))

	mine, err := student.MyIssues(ctx, "in_progress")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	byTicket, err := student.Issue(ctx, strings.ToLower(ticket))
	require.NoError(t, err)
	assert.Equal(t, similar[0].ID, byTicket.ID)

	code, env := s.get(t, student, "/api/v1/notifications/unread-count")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread_count":1}`, string(env.Data))

	code, env = s.get(t, student, "/api/v1/issues/"+ticket+"/history")
	assert.Equal(t, http.StatusOK, code)
	var history []models.IssueEvent
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 2)

	// another student cannot read it
	other := s.signUp(t, "21CS101")
	_, err = other.Issue(ctx, ticket)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestUpdateStatus_Conflict(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	student := s.signUp(t, "21CS103")
	responder := s.staff(t, "ST101", models.RoleResponder)

	cat, err := student.Categories(ctx)
	require.NoError(t, err)
	def, err := cat.Get("classroom")
	require.NoError(t, err)
	form := forms.New(def)
	st := form.ReduceAll(form.Initial(),
		forms.SetOptionType{Type: catalog.OptionComplaint},
		forms.SetDomain{Domain: "Lighting"},
		forms.SetFormData{Values: map[string]string{"block": "C", "floor": "2", "room": "204", "comments": "tube light flickering"}},
	)
	created, err := student.SubmitIssue(ctx, form.Payload(st, types.Reporter{}))
	require.NoError(t, err)
	seen, err := responder.Issue(ctx, created["ticket"].(string))
	require.NoError(t, err)
	require.Equal(t, "open", seen.Status)

	// a second responder picks it up before the first one acts
	require.NoError(t, s.db.Model(&models.Issue{}).Where("id = ?", seen.ID).
		Update("status", models.IssueInProgress).Error)

	_, err = responder.UpdateIssueStatus(ctx, seen.ID, types.StatusUpdate{Status: "resolved", From: seen.Status})
	assert.True(t, client.IsStatus(err, http.StatusConflict), "got %v", err)

	current, err := responder.Issue(ctx, seen.Ticket)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", current.Status)

	updated, err := responder.UpdateIssueStatus(ctx, seen.ID, types.StatusUpdate{Status: "resolved", From: current.Status})
	require.NoError(t, err)
	assert.Equal(t, "resolved", updated.Status)
}

func TestCreateIssue_ValidationDetails(t *testing.T) {
	s := newTestServer(t)
	student := s.signUp(t, "21CS102")

	_, err := student.SubmitIssue(context.Background(), types.IssueSubmission{
		Category: "classroom", Type: "Complaint", Domain: "Furniture", Block: "A",
	})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"missing: floor", "missing: room", "missing: comments"}, apiErr.Details)

	_, err = student.SubmitIssue(context.Background(), types.IssueSubmission{Category: "classroom"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"type: failed required"}, apiErr.Details)
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	student := s.signUp(t, "21CS103")

	code, env := s.get(t, nil, "/api/v1/issues/mine")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.get(t, student, "/api/v1/issues")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.get(t, student, "/api/v1/admin/users")
	assert.Equal(t, http.StatusForbidden, code)

	responder := s.staff(t, "ST101", models.RoleResponder)
	code, env = s.get(t, responder, "/api/v1/issues?status=open")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"pagination"`)
}

func TestAdminTogglesCategory(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff(t, "AD100", models.RoleAdmin)
	ctx := context.Background()

	before, err := admin.Categories(ctx)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPatch, s.url+"/api/v1/admin/categories/lift", strings.NewReader(`{"is_active":false}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken())
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	after, err := admin.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, after.Keys(), len(before.Keys())-1)
	_, err = after.Get("lift")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestLostFoundAndAttachments(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	owner := s.signUp(t, "21CS104")
	finder := s.signUp(t, "21CS105")

	item, err := owner.CreateLostFound(ctx, types.LostFoundCreate{Kind: "lost", Title: "ID card"})
	require.NoError(t, err)

	_, err = owner.ClaimLostFound(ctx, item.ID)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	claimed, err := finder.ClaimLostFound(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "claimed", claimed.Status)

	list, err := finder.LostFound(ctx, "lost", "claimed")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	att, err := owner.UploadAttachment(ctx, "leak.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(att.URL, "https://cdn.test/gms/issues/"))
	assert.Equal(t, 3, att.Bytes)

	_, err = owner.UploadAttachment(ctx, "notes.txt", strings.NewReader("text"))
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))
}

func TestRefreshAndSignOut(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	c := client.New(s.url)
	res, err := c.SignUp(ctx, types.SignUpRequest{
		StudentID: "21CS106", FullName: "Refresh Tester", Password: "campus123", ConfirmPassword: "campus123",
	})
	require.NoError(t, err)

	again, err := c.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, again.Tokens.AccessToken)

	require.NoError(t, c.SignOut(ctx, res.Tokens.RefreshToken))
	_, err = c.Refresh(ctx, res.Tokens.RefreshToken)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	// access tokens outlive sign-out until they expire
	c.SetAccessToken(again.Tokens.AccessToken)
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "21CS106", me.StudentID)
}
