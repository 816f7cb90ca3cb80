package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is one day of attendance for one user, as reported by the
// external workforce system. The core treats it as opaque display data and
// must not assume it is real.
type AttendanceRecord struct {
	TimeIn  string `json:"time_in"`
	TimeOut string `json:"time_out"`
	Status  string `json:"status"` // "present" | "absent" | "leave"
}

// LocationMetrics carries external per-store figures (sales, footfall).
type LocationMetrics struct {
	Sales         int64 `json:"sales"`
	CustomerCount int64 `json:"customer_count"`
}

// ExternalDataProvider is the attendance/metrics collaborator. The default
// deployment uses the mock; a real integration plugs in over HTTP.
type ExternalDataProvider interface {
	Attendance(ctx context.Context, userID uuid.UUID, date time.Time) (*AttendanceRecord, error)
	LocationMetrics(ctx context.Context, locationID uuid.UUID) (*LocationMetrics, error)
}

// ─── Mock provider ───────────────────────────────────────────────────────────

// MockDataProvider returns fixed placeholder data, mirroring what the real
// provider will eventually serve.
type MockDataProvider struct{}

func NewMockDataProvider() *MockDataProvider { return &MockDataProvider{} }

func (p *MockDataProvider) Attendance(_ context.Context, _ uuid.UUID, _ time.Time) (*AttendanceRecord, error) {
	return &AttendanceRecord{TimeIn: "08:00", TimeOut: "17:00", Status: "present"}, nil
}

func (p *MockDataProvider) LocationMetrics(_ context.Context, _ uuid.UUID) (*LocationMetrics, error) {
	return &LocationMetrics{Sales: 1000000, CustomerCount: 150}, nil
}

// ─── HTTP provider ───────────────────────────────────────────────────────────

// HTTPDataProvider talks to a real metrics service. Calls run through a
// circuit breaker so provider outages fast-fail instead of stalling dashboards.
type HTTPDataProvider struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewHTTPDataProvider(baseURL string, cb *CircuitBreaker) *HTTPDataProvider {
	return &HTTPDataProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

func (p *HTTPDataProvider) Attendance(ctx context.Context, userID uuid.UUID, date time.Time) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	url := fmt.Sprintf("%s/attendance/%s?date=%s", p.baseURL, userID, date.Format("2006-01-02"))
	if err := p.cb.Execute(func() error { return p.getJSON(ctx, url, &rec) }); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *HTTPDataProvider) LocationMetrics(ctx context.Context, locationID uuid.UUID) (*LocationMetrics, error) {
	var m LocationMetrics
	url := fmt.Sprintf("%s/locations/%s/metrics", p.baseURL, locationID)
	if err := p.cb.Execute(func() error { return p.getJSON(ctx, url, &m) }); err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *HTTPDataProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("metrics: create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metrics: provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metrics: provider returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
