package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrTokenRequired = errors.New("an auth token is required for this listing")
	ErrTokenExpired  = errors.New("auth token has expired, log in again")
)

// soundJSON is one element of the backend's sound listing.
type soundJSON struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"fileUrl"`
	Tags      []string  `json:"tags"`
	User      ownerJSON `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// ownerJSON accepts the uploader either populated ({_id, username}) or as a
// bare id string.
type ownerJSON struct {
	ID       string
	Username string
}

func (o *ownerJSON) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &o.ID)
	}
	var populated struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &populated); err != nil {
		return err
	}
	o.ID = populated.ID
	o.Username = populated.Username
	return nil
}

type errorJSON struct {
	Message string `json:"message"`
}

// CatalogClient reads the sound listings of the backend.
type CatalogClient struct {
	base   *url.URL
	token  string
	client *http.Client
	log    *zap.Logger
}

// NewCatalogClient returns a client for the backend at baseURL. The HTTP
// client carries no timeout unless the caller configures one.
func NewCatalogClient(baseURL, token string, client *http.Client, log *zap.Logger) (*CatalogClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if client == nil {
		client = &http.Client{}
	}
	return &CatalogClient{base: base, token: token, client: client, log: log}, nil
}

// Host is the backend host shown in the header.
func (c *CatalogClient) Host() string {
	return c.base.Host
}

// FetchSounds lists every sound.
func (c *CatalogClient) FetchSounds(ctx context.Context) ([]Item, error) {
	return c.list(ctx, "api/sounds", false)
}

// FetchUserSounds lists the sounds uploaded by the token's owner.
func (c *CatalogClient) FetchUserSounds(ctx context.Context) ([]Item, error) {
	if c.token == "" {
		return nil, ErrTokenRequired
	}
	if err := checkToken(c.token, time.Now()); err != nil {
		return nil, err
	}
	return c.list(ctx, "api/sounds/user", true)
}

func (c *CatalogClient) list(ctx context.Context, path string, auth bool) ([]Item, error) {
	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body errorJSON
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
			return nil, fmt.Errorf("%s returned status %d: %s", endpoint.Path, resp.StatusCode, body.Message)
		}
		return nil, fmt.Errorf("%s returned status %d", endpoint.Path, resp.StatusCode)
	}

	var sounds []soundJSON
	if err := json.NewDecoder(resp.Body).Decode(&sounds); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint.Path, err)
	}

	items := make([]Item, 0, len(sounds))
	for _, s := range sounds {
		items = append(items, Item{
			ID:        s.ID,
			Title:     s.Title,
			URL:       c.resolve(s.FileURL),
			Tags:      s.Tags,
			Owner:     s.User.Username,
			CreatedAt: s.CreatedAt,
		})
	}
	c.log.Info("sounds fetched", zap.String("path", endpoint.Path), zap.Int("count", len(items)))
	return items, nil
}

// resolve turns a server-relative file url into an absolute one.
func (c *CatalogClient) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.base.ResolveReference(u).String()
}

// checkToken rejects tokens whose exp claim has passed. The signature is not
// verified here; that is the backend's job.
func checkToken(token string, now time.Time) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("parse auth token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("read token expiry: %w", err)
	}
	if exp != nil && !exp.After(now) {
		return ErrTokenExpired
	}
	return nil
}
