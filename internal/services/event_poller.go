package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
)

// IncidentFeed is the pollable event source collaborator: a recent-incidents
// endpoint whose items carry created_at timestamps
type IncidentFeed interface {
	RecentIncidents(ctx context.Context) ([]*models.SecurityEvent, error)
}

// EventPoller polls the incident feed on a fixed interval and feeds events
// newer than its watermark to the processor. The poller owns its state
// (watermark, in-flight flag); a cycle that outlives the interval causes the
// next tick to be skipped rather than overlapped.
type EventPoller struct {
	logger    *logger.Logger
	feed      IncidentFeed
	processor *EventProcessor
	interval  time.Duration

	lastChecked time.Time
	inFlight    atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEventPoller creates a new event poller
func NewEventPoller(
	log *logger.Logger,
	feed IncidentFeed,
	processor *EventProcessor,
	cfg *config.Config,
) *EventPoller {
	return &EventPoller{
		logger:    log,
		feed:      feed,
		processor: processor,
		interval:  time.Duration(cfg.Poller.IntervalSeconds) * time.Second,
	}
}

// Start begins the polling loop. Only events created after startup are
// considered.
func (p *EventPoller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.lastChecked = time.Now()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()

	p.logger.WithField("interval", p.interval.String()).Info("Event poller started")
}

// Stop terminates the polling loop and waits for an in-flight cycle
func (p *EventPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Event poller stopped")
}

// poll runs one cycle. Cycles are single-flight: if the previous cycle is
// still running the tick is dropped.
func (p *EventPoller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		pollCyclesTotal.WithLabelValues("skipped").Inc()
		p.logger.Warn("Previous poll cycle still running, skipping tick")
		return
	}
	defer p.inFlight.Store(false)

	events, err := p.feed.RecentIncidents(ctx)
	if err != nil {
		pollCyclesTotal.WithLabelValues("error").Inc()
		p.logger.WithError(err).Error("Incident poll failed")
		return
	}

	watermark := p.lastChecked
	for _, event := range events {
		if !event.Timestamp.After(p.lastChecked) {
			continue
		}
		if event.Timestamp.After(watermark) {
			watermark = event.Timestamp
		}

		// Per-event failures must not stop the batch.
		if err := p.processor.ProcessEvent(ctx, event, "poller"); err != nil {
			p.logger.WithEvent(event.EventID).WithError(err).
				Error("Failed to process polled event")
		}
	}
	p.lastChecked = watermark

	pollCyclesTotal.WithLabelValues("ok").Inc()
}

// httpIncidentFeed implements IncidentFeed against a REST endpoint
type httpIncidentFeed struct {
	client *http.Client
	url    string
}

// NewHTTPIncidentFeed creates an incident feed backed by an HTTP endpoint
func NewHTTPIncidentFeed(cfg *config.Config) IncidentFeed {
	return &httpIncidentFeed{
		client: &http.Client{
			Timeout: time.Duration(cfg.Poller.TimeoutSeconds) * time.Second,
		},
		url: cfg.Poller.SourceURL,
	}
}

// polledIncident is the feed's wire shape
type polledIncident struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Severity   string    `json:"severity"`
	ThreatType string    `json:"threat_type"`
	RiskScore  float64   `json:"risk_score"`
	SourceIP   string    `json:"source_ip"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecentIncidents fetches and converts the feed's recent incidents
func (f *httpIncidentFeed) RecentIncidents(ctx context.Context) ([]*models.SecurityEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("incident feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("incident feed returned %d", resp.StatusCode)
	}

	var incidents []polledIncident
	if err := json.NewDecoder(resp.Body).Decode(&incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incident feed: %w", err)
	}

	events := make([]*models.SecurityEvent, 0, len(incidents))
	for _, inc := range incidents {
		events = append(events, &models.SecurityEvent{
			EventID:    inc.ID,
			EventType:  "polled_incident",
			Severity:   inc.Severity,
			ThreatType: inc.ThreatType,
			RiskScore:  inc.RiskScore,
			SourceIP:   inc.SourceIP,
			Timestamp:  inc.CreatedAt,
		})
	}
	return events, nil
}
