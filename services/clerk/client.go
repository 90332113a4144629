package clerk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// BaseURL is the Clerk backend API base URL
	BaseURL = "https://api.clerk.com"
	// DefaultTimeout bounds synchronous identity lookups; they sit on the
	// request path of authorization checks.
	DefaultTimeout = 10 * time.Second

	// RoleEducator is the role that allows publishing courses.
	RoleEducator = "educator"
)

// RoleChecker is the capability lookup the route layer consults before
// letting a caller act as an educator.
type RoleChecker interface {
	UserRole(ctx context.Context, userID string) (string, error)
}

// Client calls the Clerk backend API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

var _ RoleChecker = (*Client)(nil)

// Config holds configuration for the Clerk client
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// NewClient creates a new Clerk API client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		secretKey: config.SecretKey,
		baseURL:   config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// User is the slice of a Clerk user object this service reads. The same
// shape arrives in webhook payload data.
type User struct {
	ID             string                 `json:"id"`
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	ImageURL       string                 `json:"image_url"`
	PublicMetadata map[string]interface{} `json:"public_metadata"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// FullName joins first and last name the way the frontend displays users.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PrimaryEmail returns the first email address, if any.
func (u *User) PrimaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

// Role reads the role claim from public metadata.
func (u *User) Role() string {
	role, _ := u.PublicMetadata["role"].(string)
	return role
}

// GetUser fetches a user from the identity provider.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserRole implements RoleChecker.
func (c *Client) UserRole(ctx context.Context, userID string) (string, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role(), nil
}

// SetUserRole writes the role into the user's public metadata.
func (c *Client) SetUserRole(ctx context.Context, userID, role string) error {
	payload := map[string]interface{}{
		"public_metadata": map[string]string{"role": role},
	}
	return c.do(ctx, http.MethodPatch, "/v1/users/"+userID+"/metadata", payload, nil)
}

// APIError is a non-2xx response from the identity provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clerk: %d %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode clerk response: %w", err)
		}
	}
	return nil
}
