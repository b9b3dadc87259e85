package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Session is the client-side authentication state. It is passed explicitly
// into every API call instead of being read from ambient storage, so the
// 401 handling below is the only global side effect in the package.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// APIError is a non-2xx response from the server. Detail carries the
// server-provided reason, taken from the response "detail" field with
// "message" as a fallback.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// envelope is the server's uniform response shape.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

// Client is a thin JSON client over the admin API.
//
// OnUnauthorized, when set, is invoked for every 401 response before the
// error is returned; the session store uses it to clear stale credentials.
// OnRequestStart/OnRequestEnd bracket every call and drive the caller's
// busy indicator; they fire regardless of success or failure.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	OnUnauthorized func()
	OnRequestStart func()
	OnRequestEnd   func()
}

// NewClient creates a client for the given base URL, e.g. "http://localhost:7070".
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs one JSON round trip. A non-2xx status or a transport failure
// is returned as an error; on success the envelope's data field is decoded
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, sess Session, body, out interface{}) error {
	if c.OnRequestStart != nil {
		c.OnRequestStart()
	}
	if c.OnRequestEnd != nil {
		defer c.OnRequestEnd()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Detail = env.Detail
			if apiErr.Detail == "" {
				apiErr.Detail = env.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("decoding response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
}

// Login exchanges credentials for a session. The returned session is not
// persisted; that is the session store's job.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/admin/login", Session{}, map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:    result.AccessToken,
		Username: result.Username,
		IsAdmin:  result.IsAdmin,
	}, nil
}

// ChangePassword changes the current user's password. The server keeps the
// old token valid until expiry, but the caller must treat the session as
// dead and re-login.
func (c *Client) ChangePassword(ctx context.Context, sess Session, currentPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/change-password", sess, map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}, nil)
}

// Building is one row of the building list.
type Building struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
}

// Device is one proevent row of a building's device list.
type Device struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	BuildingID    int    `json:"building_id"`
	ReactiveState int    `json:"reactive_state"`
	IsIgnored     bool   `json:"is_ignored"`
}

// Armed reports whether the proevent is currently reactive.
func (d Device) Armed() bool {
	return d.ReactiveState == 0
}

// IgnoreEdit is one entry of a bulk ignore update. ItemID and DeviceID are
// kept as separate fields even though they hold the same value for all
// observed data; the server payload keeps the distinction.
type IgnoreEdit struct {
	ItemID     int  `json:"item_id"`
	BuildingID int  `json:"building_id"`
	DeviceID   int  `json:"device_id"`
	Ignore     bool `json:"ignore"`
}

// ReevaluateResult is the payload of a reevaluate call.
type ReevaluateResult struct {
	OperationID string `json:"operation_id"`
	BuildingID  int    `json:"building_id"`
	Updated     int    `json:"updated"`
}

// FetchBuildings lists all buildings.
func (c *Client) FetchBuildings(ctx context.Context, sess Session) ([]Building, error) {
	var buildings []Building
	if err := c.do(ctx, http.MethodGet, "/api/buildings", sess, nil, &buildings); err != nil {
		return nil, err
	}
	return buildings, nil
}

// FetchDevices lists proevents for a building with server-side search and limit.
func (c *Client) FetchDevices(ctx context.Context, sess Session, buildingID, limit int, search string) ([]Device, error) {
	path := "/api/devices?building=" + strconv.Itoa(buildingID) + "&limit=" + strconv.Itoa(limit)
	if search != "" {
		path += "&search=" + url.QueryEscape(search)
	}
	var devices []Device
	if err := c.do(ctx, http.MethodGet, path, sess, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// PostSchedule updates a building's schedule start time.
func (c *Client) PostSchedule(ctx context.Context, sess Session, buildingID int, startTime string) error {
	path := fmt.Sprintf("/api/buildings/%d/time", buildingID)
	return c.do(ctx, http.MethodPost, path, sess, map[string]interface{}{
		"building_id": buildingID,
		"start_time":  startTime,
	}, nil)
}

// PostBulkIgnore submits a bulk ignore-flag update.
func (c *Client) PostBulkIgnore(ctx context.Context, sess Session, items []IgnoreEdit) error {
	return c.do(ctx, http.MethodPost, "/api/proevents/ignore/bulk", sess, map[string]interface{}{
		"items": items,
	}, nil)
}

// PostReevaluate triggers a server-side recomputation of proevent states.
func (c *Client) PostReevaluate(ctx context.Context, sess Session, buildingID int) (*ReevaluateResult, error) {
	path := fmt.Sprintf("/api/buildings/%d/reevaluate", buildingID)
	var result ReevaluateResult
	if err := c.do(ctx, http.MethodPost, path, sess, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// User is one row of the admin user list.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// FetchUsers lists admin users.
func (c *Client) FetchUsers(ctx context.Context, sess Session) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", sess, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates an admin user.
func (c *Client) CreateUser(ctx context.Context, sess Session, username, password string, isAdmin bool) error {
	return c.do(ctx, http.MethodPost, "/api/admin/users", sess, map[string]interface{}{
		"username": username,
		"password": password,
		"is_admin": isAdmin,
	}, nil)
}

// DeleteUser deletes an admin user by id.
func (c *Client) DeleteUser(ctx context.Context, sess Session, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), sess, nil, nil)
}
