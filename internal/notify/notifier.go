// Package notify carries the fire-and-forget side effects of moderation.
package notify

import (
	"context"
	"net/http"
	"time"

	"bizbranches/pkg/kafka"
	"bizbranches/pkg/logger"
)

// ModerationEvent is published when a business changes moderation status.
type ModerationEvent struct {
	BusinessID string    `json:"businessId"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}

// Notifier pings the search-engine sitemap endpoint and publishes a
// moderation event when a business is approved. Both effects are
// best-effort: failures are logged and never surface to the caller.
type Notifier struct {
	log        *logger.Logger
	httpClient *http.Client
	pingURL    string
	producer   *kafka.Producer
}

func New(log *logger.Logger, pingURL string, producer *kafka.Producer) *Notifier {
	return &Notifier{
		log:        log,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pingURL:    pingURL,
		producer:   producer,
	}
}

// BusinessApproved runs the side effects on their own goroutine so the
// moderation request never waits on them.
func (n *Notifier) BusinessApproved(businessID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		n.pingSitemap(ctx)
		n.publishEvent(ctx, businessID)
	}()
}

func (n *Notifier) pingSitemap(ctx context.Context) {
	if n.pingURL == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.pingURL, nil)
	if err != nil {
		n.log.Warn("Sitemap ping request build failed", "error", err)
		return
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn("Sitemap ping failed", "url", n.pingURL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.log.Warn("Sitemap ping rejected", "url", n.pingURL, "status", resp.StatusCode)
	}
}

func (n *Notifier) publishEvent(ctx context.Context, businessID string) {
	if n.producer == nil {
		return
	}

	event := ModerationEvent{
		BusinessID: businessID,
		Status:     "approved",
		At:         time.Now().UTC(),
	}
	if err := n.producer.PublishJSON(ctx, businessID, event); err != nil {
		n.log.Warn("Moderation event publish failed", "business_id", businessID, "error", err)
	}
}
