package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
)

// ProfileGateway fetches display data of both participants of a room
type ProfileGateway interface {
	Fetch(ctx context.Context, idUser, idUserTo int64) (*domain.ProfilePair, error)
}

// maxProfileBody caps the upstream response read
const maxProfileBody = 1 << 20

// ProfileClient calls the user service: GET {baseURL}api/user/get
type ProfileClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewProfileClient creates a new ProfileClient. baseURL must end with "/".
func NewProfileClient(baseURL, apiKey string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs one remote call, no retry
func (c *ProfileClient) Fetch(ctx context.Context, idUser, idUserTo int64) (*domain.ProfilePair, error) {
	params := url.Values{}
	params.Set("id_user", strconv.FormatInt(idUser, 10))
	params.Set("id_user_to", strconv.FormatInt(idUserTo, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"api/user/get?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build profile request: %w", common.ErrUpstream, err)
	}
	req.Header.Set("X-Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: profile request: %w", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read profile response: %w", common.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: profile service returned %d", common.ErrUpstream, resp.StatusCode)
	}

	var pair domain.ProfilePair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("%w: decode profile response: %w", common.ErrUpstream, err)
	}
	return pair.Normalized(), nil
}
