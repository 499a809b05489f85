package audit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kayoni-co/stocklog/internal/config"
	"github.com/kayoni-co/stocklog/internal/domain/models"
)

// Client publishes export events to the external audit consumer.
type Client interface {
	PublishEvent(ctx context.Context, event models.ExportEvent) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
}

// NewClient builds an audit webhook client using the provided configuration values.
func NewClient(cfg config.AuditConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.WebhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	if cfg.WebhookToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.WebhookToken))
	}

	return &WebhookClient{httpClient: restyClient}
}

// apiError represents an error payload returned by the audit endpoint.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PublishEvent POSTs one export event to the configured webhook.
func (c *WebhookClient) PublishEvent(ctx context.Context, event models.ExportEvent) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		SetError(apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("publish export event: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		code := resp.StatusCode()
		if apiErr.Code != 0 {
			code = apiErr.Code
		}
		return fmt.Errorf("audit webhook error: code=%d, message=%s", code, message)
	}

	return nil
}
