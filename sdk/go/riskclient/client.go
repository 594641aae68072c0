// Package riskclient is a small Go client for the gridrisk scoring API.
package riskclient

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
	"sync"
	"time"
)

var (
	ErrNotFound    = errors.New("entity not found")
	ErrRateLimited = errors.New("rate limited")
)

// APIError is a failed call as reported by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	TraceID    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gridrisk: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Is lets callers match ErrNotFound and ErrRateLimited.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

type Attribute struct {
	CodeType  string `json:"code_type"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Event struct {
	CategoryCode    string `json:"category_code"`
	SubCategoryCode string `json:"sub_category_code,omitempty"`
	EventDate       string `json:"event_date,omitempty"`
	Description     string `json:"description,omitempty"`
}

type Address struct {
	Country     string `json:"country,omitempty"`
	AddressType string `json:"address_type,omitempty"`
}

type Relationship struct {
	RelatedEntityID  string   `json:"related_entity_id"`
	Type             string   `json:"type,omitempty"`
	Direction        string   `json:"direction,omitempty"`
	Degree           int      `json:"degree,omitempty"`
	RelatedRiskScore *float64 `json:"related_risk_score,omitempty"`
}

// EntityFacts is everything the caller knows about one entity.
type EntityFacts struct {
	EntityID      string         `json:"entity_id"`
	Attributes    []Attribute    `json:"attributes,omitempty"`
	Events        []Event        `json:"events,omitempty"`
	Addresses     []Address      `json:"addresses,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

type PEP struct {
	IsPEP          bool     `json:"is_pep"`
	Roles          []string `json:"roles"`
	MaxPriority    int      `json:"max_priority"`
	RiskMultiplier float64  `json:"risk_multiplier"`
	Rating         string   `json:"rating,omitempty"`
	RatingDate     string   `json:"rating_date,omitempty"`
}

// Profile is one entity's result. Scores are nil when Status is "unavailable".
type Profile struct {
	EntityID          string   `json:"entity_id"`
	Status            string   `json:"status"`
	Reason            string   `json:"reason,omitempty"`
	PEP               *PEP     `json:"pep,omitempty"`
	EventScore        *float64 `json:"event_score,omitempty"`
	GeographicScore   *float64 `json:"geographic_score,omitempty"`
	RelationshipScore *float64 `json:"relationship_score,omitempty"`
	FinalScore        *float64 `json:"final_score,omitempty"`
	SeverityTier      string   `json:"severity_tier,omitempty"`
	AppliedFloor      string   `json:"applied_floor,omitempty"`
	SkippedFacts      int      `json:"skipped_facts,omitempty"`
	ScoredAt          string   `json:"scored_at,omitempty"`
}

type BatchResult struct {
	BatchID     string    `json:"batch_id"`
	AsOf        string    `json:"as_of"`
	Requested   int       `json:"requested"`
	Scored      int       `json:"scored"`
	Unavailable int       `json:"unavailable"`
	Incomplete  bool      `json:"incomplete"`
	DurationMS  int64     `json:"duration_ms"`
	Results     []Profile `json:"results"`
}

type TierSummary struct {
	Total int64            `json:"total"`
	Tiers map[string]int64 `json:"tiers"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	TraceID string `json:"trace_id"`
}

// Client calls one gridrisk server. Profiles fetched with GetProfile are
// cached for ProfileTTL; a zero TTL disables the cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	profileTTL time.Duration

	cacheMutex sync.RWMutex
	profiles   map[string]cachedProfile
	now        func() time.Time
}

type cachedProfile struct {
	profile Profile
	expires time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithProfileTTL caches GetProfile results for ttl.
func WithProfileTTL(ttl time.Duration) Option {
	return func(c *Client) { c.profileTTL = ttl }
}

// NewClient creates a client for the server at baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		profiles:   make(map[string]cachedProfile),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScoreFacts scores caller-supplied facts. asOf may be empty for today.
func (c *Client) ScoreFacts(ctx context.Context, entities []EntityFacts, asOf string, persist bool) (*BatchResult, error) {
	body := map[string]interface{}{"entities": entities, "persist": persist}
	if asOf != "" {
		body["as_of"] = asOf
	}
	var out BatchResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/scores", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScoreEntities scores entities whose facts live in the server's warehouse.
func (c *Client) ScoreEntities(ctx context.Context, entityIDs []string, asOf string) (*BatchResult, error) {
	body := map[string]interface{}{"entity_ids": entityIDs}
	if asOf != "" {
		body["as_of"] = asOf
	}
	var out BatchResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/entities/score", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile returns the latest persisted profile of an entity.
func (c *Client) GetProfile(ctx context.Context, entityID string) (*Profile, error) {
	if c.profileTTL > 0 {
		c.cacheMutex.RLock()
		cached, found := c.profiles[entityID]
		c.cacheMutex.RUnlock()
		if found && c.now().Before(cached.expires) {
			p := cached.profile
			return &p, nil
		}
	}

	var out Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/entities/"+url.PathEscape(entityID)+"/profile", nil, &out); err != nil {
		return nil, err
	}

	if c.profileTTL > 0 {
		c.cacheMutex.Lock()
		c.profiles[entityID] = cachedProfile{profile: out, expires: c.now().Add(c.profileTTL)}
		c.cacheMutex.Unlock()
	}
	return &out, nil
}

// TierSummary returns the count of persisted profiles per severity tier.
func (c *Client) TierSummary(ctx context.Context) (*TierSummary, error) {
	var out TierSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/tiers", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Code: "invalid_response", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "server_error", TraceID: env.TraceID}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return apiErr
	}
	return json.Unmarshal(env.Data, out)
}
