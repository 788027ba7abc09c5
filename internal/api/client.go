package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userAgent = "Karaoke-Go/0.1.0"

// Error is returned for non-2xx replies.
type Error struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", msg, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
}

// IsNotFound reports a 404 reply.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the karaoke daemon over HTTP.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

// NewClient builds a client for baseURL ("127.0.0.1:7488" or a full URL).
// A non-empty token is sent as a bearer credential.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api: server address is required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse server address: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: parsed, token: strings.TrimSpace(token), http: httpClient}, nil
}

// BaseURL returns the resolved server URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

func queuePath(queueID string, rest ...string) string {
	parts := append([]string{"api", "queues", url.PathEscape(queueID)}, rest...)
	return "/" + strings.Join(parts, "/")
}

// do sends body as JSON (or raw when it is an io.Reader) and decodes the
// reply into out. It reports false for 204 replies.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) (bool, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
		contentType = "application/yaml"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return false, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode, RequestID: requestID}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload ErrorResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Code = payload.Code
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return false, apiErr
	}
	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return true, nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var resp DaemonStatus
	if _, err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Queues lists non-empty queues.
func (c *Client) Queues(ctx context.Context) (*QueuesResponse, error) {
	var resp QueuesResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/queues", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Items lists a queue; limit <= 0 returns every item.
func (c *Client) Items(ctx context.Context, queueID string, limit int) (*QueueItemsResponse, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	var resp QueueItemsResponse
	if _, err := c.do(ctx, http.MethodGet, queuePath(queueID, "items"), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Enqueue(ctx context.Context, queueID string, req EnqueueRequest) (*QueueItemResponse, error) {
	var resp QueueItemResponse
	if _, err := c.do(ctx, http.MethodPost, queuePath(queueID, "items"), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Move(ctx context.Context, queueID string, position float64, req MoveRequest) (*QueueItemResponse, error) {
	var resp QueueItemResponse
	if _, err := c.do(ctx, http.MethodPut, queuePath(queueID, "items", FormatPosition(position)), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Remove(ctx context.Context, queueID string, position float64) (*QueueItemResponse, error) {
	var resp QueueItemResponse
	if _, err := c.do(ctx, http.MethodDelete, queuePath(queueID, "items", FormatPosition(position)), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dequeue removes the head of the queue. It returns nil for an empty queue.
func (c *Client) Dequeue(ctx context.Context, queueID string) (*QueueItemResponse, error) {
	var resp QueueItemResponse
	ok, err := c.do(ctx, http.MethodDelete, queuePath(queueID, "items", "dequeue"), nil, nil, &resp)
	if err != nil || !ok {
		return nil, err
	}
	return &resp, nil
}

// Peek returns the head of the queue, or nil for an empty queue.
func (c *Client) Peek(ctx context.Context, queueID string) (*QueueItemResponse, error) {
	var resp QueueItemResponse
	ok, err := c.do(ctx, http.MethodGet, queuePath(queueID, "items", "peek"), nil, nil, &resp)
	if err != nil || !ok {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Clear(ctx context.Context, queueID string) (*ClearResponse, error) {
	var resp ClearResponse
	if _, err := c.do(ctx, http.MethodDelete, queuePath(queueID, "items"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Renumber(ctx context.Context, queueID string) (*QueueItemsResponse, error) {
	var resp QueueItemsResponse
	if _, err := c.do(ctx, http.MethodPost, queuePath(queueID, "renumber"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Playing(ctx context.Context, queueID string) (*PlayingResponse, error) {
	var resp PlayingResponse
	if _, err := c.do(ctx, http.MethodGet, queuePath(queueID, "playing"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetPlaying(ctx context.Context, queueID string, songID int64) (*PlayingResponse, error) {
	var resp PlayingResponse
	if _, err := c.do(ctx, http.MethodPut, queuePath(queueID, "playing"), nil, SetPlayingRequest{SongID: songID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ClearPlaying(ctx context.Context, queueID string) error {
	_, err := c.do(ctx, http.MethodDelete, queuePath(queueID, "playing"), nil, nil, nil)
	return err
}

// PlayNext advances the queue; Playing is nil once the queue ran dry.
func (c *Client) PlayNext(ctx context.Context, queueID string) (*PlayingResponse, error) {
	var resp PlayingResponse
	if _, err := c.do(ctx, http.MethodPost, queuePath(queueID, "playing", "next"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Skip signals the room's players; Playing is the song that was skipped.
func (c *Client) Skip(ctx context.Context, queueID string) (*PlayingResponse, error) {
	var resp PlayingResponse
	if _, err := c.do(ctx, http.MethodPost, queuePath(queueID, "playing", "skip"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Songs(ctx context.Context, limit, offset int) (*SongsResponse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	var resp SongsResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/songs", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SearchSongs(ctx context.Context, req SearchSongsRequest) (*SearchSongsResponse, error) {
	var resp SearchSongsResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/songs/search", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateSong(ctx context.Context, req CreateSongRequest) (*SongResponse, error) {
	var resp SongResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/songs", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Song(ctx context.Context, id int64) (*SongResponse, error) {
	var resp SongResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/songs/"+strconv.FormatInt(id, 10), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteSong(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/songs/"+strconv.FormatInt(id, 10), nil, nil, nil)
	return err
}

// RecordPlay bumps a song's play counter.
func (c *Client) RecordPlay(ctx context.Context, id int64) (*SongResponse, error) {
	var resp SongResponse
	if _, err := c.do(ctx, http.MethodPut, "/api/songs/"+strconv.FormatInt(id, 10)+"/playCount", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportSongs uploads a YAML seed document.
func (c *Client) ImportSongs(ctx context.Context, r io.Reader) (*SongsResponse, error) {
	var resp SongsResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/songs/import", nil, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
