package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// User is the account as the user service reports it to us. It carries
// the password hash because credential verification happens here, not
// in the store.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	RoleID       string `json:"roleId,omitempty"`
	ProfileID    string `json:"profileId,omitempty"`
}

// Permission as the user service reports it.
type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileInput is the optional profile attached on sign-up.
type ProfileInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// CreateUserInput is what the registrar sends to the user service. The
// password is already hashed; plaintext never crosses the wire here.
type CreateUserInput struct {
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"passwordHash"`
	Role         string        `json:"role,omitempty"` // role name, resolved remotely
	Profile      *ProfileInput `json:"profile,omitempty"`
}

// Client is the HTTP client of the user service. Every response is the
// standard envelope; data is decoded per endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client against baseURL. timeout bounds every call
// (0 = 5s default).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope mirrors httpx.Envelope with data left raw for per-endpoint
// decoding.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// get performs a GET and decodes data into out. 404 maps to
// ErrNotFound; any other non-2xx to ErrRemote.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s: status %d", ErrRemote, path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrRemote, err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: decode data: %v", ErrRemote, err)
		}
	}
	return nil
}

// UserByUsername fetches a user by exact username.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/username/"+url.PathEscape(username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByEmail fetches a user by email.
func (c *Client) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/email/"+url.PathEscape(email), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID fetches a user by id.
func (c *Client) UserByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/"+url.PathEscape(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PermissionsByRole fetches the permissions granted to a role. A role
// with no permissions yields an empty slice.
func (c *Client) PermissionsByRole(ctx context.Context, roleID string) ([]Permission, error) {
	var perms []Permission
	if err := c.get(ctx, "/permissions/roles/"+url.PathEscape(roleID), &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// CreateUser posts a new account. A 409 from the store maps to
// ErrConflictRemote so the registrar can re-check which field clashed.
func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrRemote, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, ErrConflictRemote
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: POST /users: status %d", ErrRemote, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrRemote, err)
	}
	var u User
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return nil, fmt.Errorf("%w: decode data: %v", ErrRemote, err)
		}
	}
	return &u, nil
}
