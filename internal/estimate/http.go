package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/Daemonaise/studio/internal/mesh"
)

// HTTPClient calls a remote estimator service. The single request is
// the only blocking operation in the quoting path; cancellation and
// deadlines come from the caller's context.
type HTTPClient struct {
	URL    string
	Client *http.Client
}

var _ Estimator = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the estimator service at url.
func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{URL: url, Client: http.DefaultClient}
}

type estimateRequest struct {
	Metrics    *mesh.Metrics `json:"metrics"`
	FilamentID string        `json:"filamentId"`
	NozzleSize string        `json:"nozzleSize"`
}

// Estimate posts the metrics to the remote service and decodes the
// baseline. A server error, a malformed body, or a non-positive or
// non-finite value all fail the estimate.
func (c *HTTPClient) Estimate(ctx context.Context, metrics *mesh.Metrics, filamentID, nozzleSize string) (Baseline, error) {
	body, err := json.Marshal(estimateRequest{Metrics: metrics, FilamentID: filamentID, NozzleSize: nozzleSize})
	if err != nil {
		return Baseline{}, fmt.Errorf("encode estimator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return Baseline{}, fmt.Errorf("build estimator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Baseline{}, fmt.Errorf("call estimator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Baseline{}, fmt.Errorf("estimator returned status %d", resp.StatusCode)
	}

	var baseline Baseline
	if err := json.NewDecoder(resp.Body).Decode(&baseline); err != nil {
		return Baseline{}, fmt.Errorf("decode estimator response: %w", err)
	}

	if !positiveFinite(baseline.PrintTimeHours) || !positiveFinite(baseline.MaterialGrams) {
		return Baseline{}, fmt.Errorf("estimator returned out-of-contract baseline %+v", baseline)
	}

	return baseline, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
