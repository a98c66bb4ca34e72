package viewer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"collaborative-annotation-engine/internal/annotation"

	"github.com/stretchr/testify/assert"
)

func TestClient_OwnerAddressing(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"annotations": []annotation.AnnotationResponse{{ID: 1}},
		})
	}))
	defer server.Close()

	client := NewOwnerClient(server.URL, "token-abc", 7)
	list, err := client.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "/documents/7/annotations", gotPath)
	assert.Equal(t, "Bearer token-abc", gotAuth)
}

func TestClient_GuestAddressing(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"annotations": []annotation.AnnotationResponse{},
		})
	}))
	defer server.Close()

	client := NewGuestClient(server.URL, "invite-xyz")
	_, err := client.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "/invite/invite-xyz/annotations", gotPath)
	// guests authenticate by route, not header
	assert.Empty(t, gotAuth)
}

func TestClient_CreateRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req annotation.CreateAnnotationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "machine learning", req.SelectedText)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"annotation": annotation.AnnotationResponse{ID: 42, Body: req.Body},
		})
	}))
	defer server.Close()

	client := NewGuestClient(server.URL, "invite-xyz")
	created, err := client.Create(context.Background(), annotation.CreateAnnotationRequest{
		SelectedText: "machine learning",
		StartIndex:   10,
		EndIndex:     26,
		Body:         "define this",
	})

	assert.NoError(t, err)
	assert.Equal(t, uint64(42), created.ID)
	assert.Equal(t, "define this", created.Body)
}

func TestClient_DeleteUsesQueryParams(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "annotation removed"})
	}))
	defer server.Close()

	client := NewOwnerClient(server.URL, "token-abc", 7)
	assert.NoError(t, client.Delete(context.Background(), 11))
	assert.Equal(t, "id=11", gotQuery)
}

func TestClient_ErrorEnvelopeSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "You can't edit this annotation",
		})
	}))
	defer server.Close()

	client := NewOwnerClient(server.URL, "token-abc", 7)
	body := "hijacked"
	_, err := client.Update(context.Background(), annotation.UpdateAnnotationRequest{ID: 11, Body: &body})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "You can't edit this annotation")
	assert.Contains(t, err.Error(), "403")
}

func TestClient_ReplyRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invite/invite-xyz/annotations/replies", r.URL.Path)

		var req annotation.AddReplyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"reply":   annotation.ReplyResponse{ID: 1, Text: req.Text},
		})
	}))
	defer server.Close()

	client := NewGuestClient(server.URL, "invite-xyz")
	reply, err := client.AddReply(context.Background(), 11, "see section 2")

	assert.NoError(t, err)
	assert.Equal(t, uint64(1), reply.ID)
	assert.Equal(t, "see section 2", reply.Text)
}
