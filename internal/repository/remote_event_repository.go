package repository

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

	"github.com/godilite/mind-compass/internal/repository/models"
)

const (
	eventsPath      = "/rest/v1/events"
	statsRPCPath    = "/rest/v1/rpc/stats_last_7_days"
	signupPath      = "/auth/v1/signup"
	currentUserPath = "/auth/v1/user"

	defaultRemoteTimeout = 10 * time.Second
	maxErrorBody         = 512

	eventsPageSize = 1000
	maxEventPages  = 500
)

var ErrRemoteStatus = errors.New("backend returned an error status")

// RemoteEventRepository talks to a managed backend exposing a PostgREST
// events table, a stats RPC and an auth endpoint that issues anonymous users.
type RemoteEventRepository struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type RemoteOption func(*RemoteEventRepository)

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteEventRepository) { r.client = c }
}

func NewRemoteEventRepository(baseURL, apiKey string, opts ...RemoteOption) *RemoteEventRepository {
	r := &RemoteEventRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultRemoteTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type remoteEvent struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Minutes    *float64        `json:"minutes,omitempty"`
	UserID     *string         `json:"user_id"`
	OccurredAt string          `json:"occurred_at"`
}

type remoteEventRow struct {
	Type       string `json:"type"`
	OccurredAt string `json:"occurred_at"`
}

type remoteAuthResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
}

type remoteUser struct {
	ID string `json:"id"`
}

func (r *RemoteEventRepository) do(ctx context.Context, method, path, token string, body any, dest any, extra http.Header) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if token == "" {
		token = r.apiKey
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s: %d %s", ErrRemoteStatus, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// AppendEvent inserts one row into the events table. The write is made with
// the session's access token when the event carries one, so row level
// security can match user_id against the caller.
func (r *RemoteEventRepository) AppendEvent(ctx context.Context, e models.Event) error {
	row := remoteEvent{
		Type:       e.Type,
		Payload:    e.Payload,
		Minutes:    e.Minutes,
		UserID:     e.UserID,
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	header := http.Header{"Prefer": []string{"return=minimal"}}
	return r.do(ctx, http.MethodPost, eventsPath, e.SessionToken, []remoteEvent{row}, nil, header)
}

// EventsSince selects occurred_at and type for events at or after since.
// Rows are read page by page until an empty page, so a server-side row cap
// smaller than the page size cannot truncate the result.
func (r *RemoteEventRepository) EventsSince(ctx context.Context, since time.Time) ([]models.EventRecord, error) {
	var out []models.EventRecord
	for page := 0; page < maxEventPages; page++ {
		q := url.Values{}
		q.Set("select", "occurred_at,type")
		q.Set("occurred_at", "gte."+since.UTC().Format(time.RFC3339Nano))
		q.Set("order", "occurred_at.asc,id.asc")
		q.Set("limit", strconv.Itoa(eventsPageSize))
		q.Set("offset", strconv.Itoa(len(out)))

		var rows []remoteEventRow
		if err := r.do(ctx, http.MethodGet, eventsPath+"?"+q.Encode(), "", nil, &rows, nil); err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return out, nil
		}

		for _, row := range rows {
			ts, err := time.Parse(time.RFC3339Nano, row.OccurredAt)
			if err != nil {
				return nil, fmt.Errorf("parse occurred_at %q: %w", row.OccurredAt, err)
			}
			out = append(out, models.EventRecord{Type: row.Type, OccurredAt: ts})
		}
	}
	return nil, fmt.Errorf("events since %s: more than %d pages", since.UTC().Format(time.RFC3339), maxEventPages)
}

// DailyStats calls the precomputed seven-day aggregation RPC.
func (r *RemoteEventRepository) DailyStats(ctx context.Context) ([]models.DailyAggregate, error) {
	var rows []models.DailyAggregate
	if err := r.do(ctx, http.MethodPost, statsRPCPath, "", struct{}{}, &rows, nil); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateAnonymousSession signs up a new anonymous user.
func (r *RemoteEventRepository) CreateAnonymousSession(ctx context.Context) (models.Session, error) {
	var resp remoteAuthResponse
	if err := r.do(ctx, http.MethodPost, signupPath, "", struct{}{}, &resp, nil); err != nil {
		return models.Session{}, err
	}
	if resp.AccessToken == "" || resp.User.ID == "" {
		return models.Session{}, errors.New("anonymous sign-up returned no session")
	}
	return models.Session{UserID: resp.User.ID, Token: resp.AccessToken}, nil
}

// CurrentSession resolves the user behind an access token.
func (r *RemoteEventRepository) CurrentSession(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrSessionNotFound
	}

	var user remoteUser
	err := r.do(ctx, http.MethodGet, currentUserPath, token, nil, &user, nil)
	if err != nil {
		if errors.Is(err, ErrRemoteStatus) {
			return models.Session{}, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
		}
		return models.Session{}, err
	}
	if user.ID == "" {
		return models.Session{}, ErrSessionNotFound
	}
	return models.Session{UserID: user.ID, Token: token}, nil
}
