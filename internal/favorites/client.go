package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Client talks to the favorites endpoints of the skycast API with a bearer
// credential.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient constructs a Client for the API at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token, client: &http.Client{Timeout: 10 * time.Second}}
}

type favoritesResponse struct {
	FavoritePlaces string `json:"favorite_places"`
}

// List returns the user's saved places.
func (c *Client) List(ctx context.Context, userID int64) ([]string, error) {
	var out favoritesResponse
	if err := c.do(ctx, http.MethodGet, userID, nil, &out); err != nil {
		return nil, fmt.Errorf("listing favorites for user %d: %w", userID, err)
	}
	return Split(out.FavoritePlaces), nil
}

// Add appends place to the user's favorites and returns the updated list.
func (c *Client) Add(ctx context.Context, userID int64, place string) ([]string, error) {
	place, err := Validate(place)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"new_place": place})
	if err != nil {
		return nil, fmt.Errorf("marshaling favorite: %w", err)
	}

	var out favoritesResponse
	if err := c.do(ctx, http.MethodPost, userID, body, &out); err != nil {
		return nil, fmt.Errorf("adding favorite %s for user %d: %w", place, userID, err)
	}
	return Split(out.FavoritePlaces), nil
}

func (c *Client) do(ctx context.Context, method string, userID int64, body []byte, dst any) error {
	endpoint := c.baseURL + "/api/v1/users/" + strconv.FormatInt(userID, 10) + "/favorites"

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrUserNotFound
	case http.StatusConflict:
		return ErrDuplicate
	case http.StatusBadRequest:
		return ErrInvalidPlace
	default:
		return fmt.Errorf("%s %s returned status %d", method, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return nil
}
