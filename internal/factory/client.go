// Package factory talks to the external fulfillment service that actually
// bakes the pizzas. The factory is an opaque HTTP collaborator; this client
// only forwards orders and relays the factory's verdict.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"slicehub/api/internal/config"
	"slicehub/api/internal/models"
)

type Diner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type orderRequest struct {
	Diner Diner        `json:"diner"`
	Order models.Order `json:"order"`
}

// Fulfillment is the factory's acknowledgement: a report link for the diner
// and a factory-signed token proving the order was accepted.
type Fulfillment struct {
	ReportURL string `json:"reportUrl"`
	JWT       string `json:"jwt"`
}

type factoryError struct {
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.FactoryConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Submit forwards the order. A non-2xx response surfaces the factory's own
// message so the caller can relay it verbatim.
func (c *Client) Submit(ctx context.Context, diner Diner, order models.Order) (Fulfillment, error) {
	body, err := json.Marshal(orderRequest{Diner: diner, Order: order})
	if err != nil {
		return Fulfillment{}, fmt.Errorf("encode factory order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return Fulfillment{}, fmt.Errorf("build factory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Fulfillment{}, fmt.Errorf("factory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var fe factoryError
		if err := json.NewDecoder(resp.Body).Decode(&fe); err == nil && fe.Message != "" {
			return Fulfillment{}, fmt.Errorf("%s", fe.Message)
		}
		return Fulfillment{}, fmt.Errorf("factory rejected order: status %d", resp.StatusCode)
	}

	var fulfillment Fulfillment
	if err := json.NewDecoder(resp.Body).Decode(&fulfillment); err != nil {
		return Fulfillment{}, fmt.Errorf("decode factory response: %w", err)
	}
	return fulfillment, nil
}
