package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-gms/catalog"
	"campus-gms/types"
)

func writeData(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}))
}

func TestSignIn_StoresAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/signin":
			var req types.SignInRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "S1001", req.StudentID)
			assert.Equal(t, "dev-1", r.Header.Get("X-Device-ID"))
			writeData(t, w, http.StatusOK, types.AuthResult{
				User:   &types.Account{StudentID: "S1001", FullName: "Asha Rao"},
				Tokens: types.TokenPair{AccessToken: "tok", RefreshToken: "ref"},
			})
		case "/api/v1/auth/me":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeData(t, w, http.StatusOK, types.Account{StudentID: "S1001", Confirmed: true})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithDeviceID("dev-1"))
	res, err := c.SignIn(context.Background(), "S1001", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ref", res.Tokens.RefreshToken)
	assert.Equal(t, "tok", c.AccessToken())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, me.Confirmed)
}

func TestAPIError_FromEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"success":false,"error":"validation failed","message":"Missing required fields","details":["room","comments"]}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitIssue(context.Background(), types.IssueSubmission{Category: "classroom"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, []string{"room", "comments"}, apiErr.Details)
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
	assert.Contains(t, err.Error(), "room, comments")
}

func TestAPIError_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Me(context.Background())
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

func TestSubmitIssue_ReturnsWholeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var sub types.IssueSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		writeData(t, w, http.StatusCreated, map[string]any{
			"id": 42, "ticket": "GMS-1A2B3C4D", "action_item": sub.ActionItem, "status": "open",
		})
	}))
	defer srv.Close()

	out, err := New(srv.URL).SubmitIssue(context.Background(), types.IssueSubmission{
		Category: "lift", ActionItem: "Lift", Type: "Complaint",
	})
	require.NoError(t, err)
	assert.Equal(t, "GMS-1A2B3C4D", out["ticket"])
	assert.Equal(t, "Lift", out["action_item"])
	assert.EqualValues(t, 42, out["id"])
}

func TestSimilarIssues_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/issues/similar", r.URL.Path)
		assert.Equal(t, "Water Dispenser", r.URL.Query().Get("action_item"))
		assert.Equal(t, "B", r.URL.Query().Get("block"))
		assert.False(t, r.URL.Query().Has("floor"))
		writeData(t, w, http.StatusOK, []types.IssueView{{ID: 1, Block: "B"}})
	}))
	defer srv.Close()

	got, err := New(srv.URL).SimilarIssues(context.Background(), types.SimilarQuery{ActionItem: "Water Dispenser", Block: "B"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestCategories_BuildsCatalog(t *testing.T) {
	def, err := catalog.Default()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, http.StatusOK, def.Categories)
	}))
	defer srv.Close()

	got, err := New(srv.URL).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, def.Keys(), got.Keys())
}

func TestUploadAttachment_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "leak.jpg", header.Filename)
		assert.Equal(t, "jpegbytes", string(body))
		writeData(t, w, http.StatusCreated, types.Attachment{URL: "https://res.cloudinary.com/x/leak.jpg", PublicID: "gms/leak"})
	}))
	defer srv.Close()

	att, err := New(srv.URL).UploadAttachment(context.Background(), "leak.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, "gms/leak", att.PublicID)
}

func TestSignOut_ForgetsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, http.StatusOK, nil)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetAccessToken("tok")
	require.NoError(t, c.SignOut(context.Background(), "ref"))
	assert.Empty(t, c.AccessToken())
}
