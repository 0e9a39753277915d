package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openkassa/kassaterm/pkg/logger"
)

// ratesResponse is the upstream exchange-rate feed shape.
type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Snapshot is one cached view of the exchange rates.
type Snapshot struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Service periodically fetches exchange rates into an in-memory cache
// so the UI never waits on the upstream feed. On a fetch failure the
// previous snapshot keeps being served.
type Service struct {
	logger          *logger.Logger
	url             string
	refreshInterval time.Duration
	client          *http.Client

	// In-memory cache
	cacheMutex sync.RWMutex
	snapshot   Snapshot

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a rate cache fetching from url. An empty url
// disables the service; Snapshot then always returns an empty view.
func NewService(url string, refreshInterval time.Duration, logger *logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		logger:          logger,
		url:             url,
		refreshInterval: refreshInterval,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start performs an initial fetch and launches the refresh loop.
func (s *Service) Start() {
	if s.url == "" {
		s.logger.Info("Exchange-rate cache disabled, no RATES_URL configured")
		return
	}

	if err := s.FetchAndUpdate(); err != nil {
		s.logger.Error("Initial exchange-rate fetch failed: ", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.FetchAndUpdate(); err != nil {
					// Keep serving the stale snapshot.
					s.logger.Error("Failed to refresh exchange rates: ", err)
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the refresh loop.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

// FetchAndUpdate fetches the upstream feed and replaces the cache.
func (s *Service) FetchAndUpdate() error {
	resp, err := s.client.Get(s.url)
	if err != nil {
		return fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var feed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Errorf("failed to decode exchange rates: %w", err)
	}

	s.cacheMutex.Lock()
	s.snapshot = Snapshot{
		Base:      feed.Base,
		Rates:     feed.Rates,
		FetchedAt: time.Now().UTC(),
	}
	s.cacheMutex.Unlock()

	s.logger.Debug("Exchange rates cached ", "count ", len(feed.Rates))
	return nil
}

// Snapshot returns a copy of the current cache.
func (s *Service) Snapshot() Snapshot {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	rates := make(map[string]decimal.Decimal, len(s.snapshot.Rates))
	for currency, rate := range s.snapshot.Rates {
		rates[currency] = rate
	}
	return Snapshot{Base: s.snapshot.Base, Rates: rates, FetchedAt: s.snapshot.FetchedAt}
}
