package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"karaoke/internal/api"
)

func TestClientSendsAuthAndRequestID(t *testing.T) {
	var gotPath, gotAuth, gotRequestID string
	var gotBody api.MoveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(api.RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(api.QueueItemResponse{Item: api.QueueItem{ID: 4, Position: 1.5}})
	}))
	defer srv.Close()

	client, err := api.NewClient(srv.URL, "secret", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	after := 1.0
	resp, err := client.Move(context.Background(), "room 1", 0.1+0.2, api.MoveRequest{Method: "afterItem", AfterPosition: &after})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if resp.Item.Position != 1.5 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gotPath != "/api/queues/room%201/items/0.30000000000000004" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(gotRequestID) != 36 {
		t.Fatalf("expected uuid request id, got %q", gotRequestID)
	}
	if gotBody.Method != "afterItem" || gotBody.AfterPosition == nil || *gotBody.AfterPosition != 1 {
		t.Fatalf("unexpected body %+v", gotBody)
	}
}

func TestClientDecodesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "no item at position", Code: "NO_ITEM_AT_POSITION"})
	}))
	defer srv.Close()

	client, err := api.NewClient(srv.URL, "", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Remove(context.Background(), "room", 9)
	if !api.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "NO_ITEM_AT_POSITION") {
		t.Fatalf("expected code in message, got %q", err.Error())
	}
}

func TestClientTreatsNoContentAsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := api.NewClient(strings.TrimPrefix(srv.URL, "http://"), "", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Dequeue(context.Background(), "room")
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if resp != nil {
		t.Fatalf("expected nil for empty queue, got %+v", resp)
	}
}

func TestClientUploadsYAML(t *testing.T) {
	var contentType, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		_ = json.NewEncoder(w).Encode(api.SongsResponse{Songs: []api.CatalogSong{{ID: 1, Title: "Africa"}}})
	}))
	defer srv.Close()

	client, err := api.NewClient(srv.URL, "", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.ImportSongs(context.Background(), strings.NewReader("songs: []\n"))
	if err != nil {
		t.Fatalf("ImportSongs: %v", err)
	}
	if contentType != "application/yaml" || body != "songs: []\n" || len(resp.Songs) != 1 {
		t.Fatalf("unexpected upload %q %q %+v", contentType, body, resp)
	}
}
