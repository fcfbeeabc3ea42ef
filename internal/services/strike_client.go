package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StrikeClient talks to the internal strike subsystem over HTTP. The
// subsystem owns all strike policy; this client only relays yes/no answers.
type StrikeClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewStrikeClient(baseURL string, log *zap.Logger) *StrikeClient {
	return &StrikeClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

type strikeResponse struct {
	Allowed bool `json:"allowed"`
}

func (c *StrikeClient) check(ctx context.Context, userID uuid.UUID, action string) (bool, error) {
	url := fmt.Sprintf("%s/internal/strikes/%s/%s", c.baseURL, userID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("strike service returned %d", resp.StatusCode)
	}

	var out strikeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Allowed, nil
}

func (c *StrikeClient) CanApply(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.check(ctx, userID, "can-apply")
}

func (c *StrikeClient) CanMessage(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.check(ctx, userID, "can-message")
}
