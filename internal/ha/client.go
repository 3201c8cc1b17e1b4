package ha

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	ttlcache "github.com/jellydator/ttlcache/v2"
)

// ErrEntityNotFound is returned when HA answers 404 for an entity.
var ErrEntityNotFound = errors.New("entity not found")

const (
	statesCacheKey = "states"
	statesCacheTTL = 15 * time.Second
	maxRetries     = 3
)

// Entity is one row of GET /api/states.
type Entity struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed"`
	LastUpdated string         `json:"last_updated"`
}

// RegistryDevice is one row of the HA device registry.
type RegistryDevice struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	NameByUser    string     `json:"name_by_user"`
	Model         string     `json:"model"`
	Manufacturer  string     `json:"manufacturer"`
	ConfigEntries []string   `json:"config_entries"`
	Identifiers   [][]string `json:"identifiers"`
}

// Client talks to the Home Assistant REST API with a long-lived token.
// Full state dumps are cached briefly so entity search from the designer
// does not hammer /api/states on every keystroke.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *ttlcache.Cache
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	cache := ttlcache.NewCache()
	cache.SetTTL(statesCacheTTL)
	cache.SkipTTLExtensionOnHit(true)
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	op := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrEntityNotFound)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(fmt.Errorf("home assistant rejected the token (HTTP %d)", resp.StatusCode))
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("home assistant: HTTP %d on %s", resp.StatusCode, path))
		case resp.StatusCode >= 500:
			err := fmt.Errorf("home assistant: HTTP %d on %s", resp.StatusCode, path)
			if method != http.MethodGet {
				// service calls are not idempotent, a retry after HA
				// already accepted one could fire it twice
				return backoff.Permanent(err)
			}
			return err
		}

		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(op, b)
}

// States fetches all entity states, served from the TTL cache when fresh.
func (c *Client) States(ctx context.Context) ([]Entity, error) {
	if v, err := c.cache.Get(statesCacheKey); err == nil {
		return v.([]Entity), nil
	}
	var entities []Entity
	if err := c.do(ctx, http.MethodGet, "/api/states", nil, &entities); err != nil {
		return nil, fmt.Errorf("fetch states: %w", err)
	}
	_ = c.cache.Set(statesCacheKey, entities)
	return entities, nil
}

// EntityState fetches a single entity, bypassing the cache.
func (c *Client) EntityState(ctx context.Context, entityID string) (*Entity, error) {
	var e Entity
	if err := c.do(ctx, http.MethodGet, "/api/states/"+entityID, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeviceRegistry lists registered devices.
func (c *Client) DeviceRegistry(ctx context.Context) ([]RegistryDevice, error) {
	var devices []RegistryDevice
	if err := c.do(ctx, http.MethodGet, "/api/config/device_registry/list", nil, &devices); err != nil {
		return nil, fmt.Errorf("fetch device registry: %w", err)
	}
	return devices, nil
}

// CallService invokes an HA service, e.g. openhasp/load_pages.
func (c *Client) CallService(ctx context.Context, domain, service string, payload any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("call %s.%s: %w", domain, service, err)
	}
	return nil
}

// ReloadPages tells the openHASP integration to push the pages file to
// the devices over MQTT.
func (c *Client) ReloadPages(ctx context.Context) error {
	return c.CallService(ctx, "openhasp", "load_pages", nil)
}

// InvalidateStates drops the cached state dump, used after a deploy.
func (c *Client) InvalidateStates() {
	_ = c.cache.Remove(statesCacheKey)
}
