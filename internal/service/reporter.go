package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
)

// AttentionReporter delivers interaction reports to the server-side
// validation boundary. Delivery is fire-and-forget: failures are
// swallowed and local score or reward state is never rolled back based
// on the outcome.
type AttentionReporter interface {
	Report(report model.AttentionReport)
}

// NoopReporter discards all reports. Used when no validation endpoint is
// configured and in tests.
type NoopReporter struct{}

func (NoopReporter) Report(model.AttentionReport) {}

// HTTPReporter posts reports as JSON to the validation endpoint.
type HTTPReporter struct {
	endpoint string
	client   *http.Client
}

func NewHTTPReporter(endpoint string) *HTTPReporter {
	return &HTTPReporter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Report sends the payload in a goroutine. Errors are logged and dropped.
func (r *HTTPReporter) Report(report model.AttentionReport) {
	go func() {
		body, err := json.Marshal(report)
		if err != nil {
			log.Printf("reporter: marshal error: %v", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
		if err != nil {
			log.Printf("reporter: request error: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			log.Printf("reporter: delivery failed (ignored): %v", err)
			return
		}
		resp.Body.Close()
	}()
}
