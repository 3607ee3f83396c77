package liveprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/VibeCoder01/GPU-Recommender/internal/config"
	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"

	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type priceClient struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*domain.LivePrice]
}

// priceResponse is the body returned by the price lookup service.
type priceResponse struct {
	Price  *float64 `json:"price"`
	Source string   `json:"source"`
}

// NewPriceClient creates an HTTP price resolver. Each Resolve call makes at
// most one request to {base}/price.
func NewPriceClient(cfg *config.LivePriceConfig) ports.PriceResolver {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:    "live-price",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("live price circuit breaker state changed")
		},
	}

	return &priceClient{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[*domain.LivePrice](settings),
	}
}

func (c *priceClient) Resolve(ctx context.Context, retailerURLs []string, cfg domain.LivePricing) (*domain.LivePrice, error) {
	if !cfg.Active() {
		return nil, domain.ErrLivePricingDisabled
	}
	if len(retailerURLs) == 0 {
		return nil, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for price lookup slot: %w", err)
		}
	}

	lp, err := c.breaker.Execute(func() (*domain.LivePrice, error) {
		return c.fetch(ctx, retailerURLs, cfg.Base)
	})
	if isBreakerOpen(err) {
		return nil, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}
	return lp, err
}

func (c *priceClient) fetch(ctx context.Context, retailerURLs []string, base string) (*domain.LivePrice, error) {
	params := url.Values{}
	for _, u := range retailerURLs {
		params.Add("url", u)
	}

	reqURL := fmt.Sprintf("%s/price?%s", strings.TrimRight(base, "/"), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("price lookup returned status %d", resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}
	if body.Price == nil {
		return nil, nil
	}

	source := body.Source
	if source == "" {
		source = retailerURLs[0]
	}
	return &domain.LivePrice{Price: *body.Price, Source: source}, nil
}

func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
