package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	agmarknetBaseURL = "https://api.data.gov.in/resource"

	// DefaultResourceID is the data.gov.in dataset of daily mandi prices.
	DefaultResourceID = "9ef84268-d588-465a-a308-a864a43d0070"
)

// Agmarknet reads daily mandi prices from the data.gov.in open data API.
type Agmarknet struct {
	apiKey     string
	resourceID string
	baseURL    string
	client     *http.Client
	now        func() time.Time
}

// NewAgmarknet creates a data.gov.in source. An empty resource id uses
// DefaultResourceID.
func NewAgmarknet(apiKey, resourceID string, timeout time.Duration) *Agmarknet {
	if resourceID == "" {
		resourceID = DefaultResourceID
	}
	return &Agmarknet{
		apiKey:     apiKey,
		resourceID: resourceID,
		baseURL:    agmarknetBaseURL,
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// WithBaseURL points the source at a different endpoint root.
func (a *Agmarknet) WithBaseURL(u string) *Agmarknet {
	a.baseURL = u
	return a
}

type agmarkRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	ArrivalDate string `json:"arrival_date"`
	ModalPrice  any    `json:"modal_price"`
}

type agmarkResponse struct {
	Records []agmarkRecord `json:"records"`
}

func (a *Agmarknet) Prices(ctx context.Context, crops []string, district string) ([]PriceEntry, error) {
	out := make([]PriceEntry, 0, len(crops))
	for _, crop := range crops {
		recs, err := a.records(ctx, crop, district)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 && district != "" {
			if recs, err = a.records(ctx, crop, ""); err != nil {
				return nil, err
			}
		}
		if e, ok := a.entry(crop, district, recs); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *Agmarknet) records(ctx context.Context, crop, district string) ([]agmarkRecord, error) {
	q := url.Values{}
	q.Set("api-key", a.apiKey)
	q.Set("format", "json")
	q.Set("limit", "20")
	q.Set("filters[commodity]", titleCase(crop))
	if district != "" {
		q.Set("filters[district]", titleCase(district))
	}

	endpoint := fmt.Sprintf("%s/%s?%s", a.baseURL, a.resourceID, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating agmarknet request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	var r agmarkResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: decoding records: %w", ErrUnavailable, err)
	}
	return r.Records, nil
}

// entry reports the latest modal price against the mean of all returned
// records.
func (a *Agmarknet) entry(crop, district string, recs []agmarkRecord) (PriceEntry, bool) {
	var (
		sum, latest float64
		n           int
		latestAt    time.Time
		market      string
	)
	for _, r := range recs {
		p, ok := parsePrice(r.ModalPrice)
		if !ok {
			continue
		}
		sum += p
		n++
		at, _ := time.Parse("02/01/2006", r.ArrivalDate)
		if n == 1 || at.After(latestAt) {
			latest, latestAt, market = p, at, r.Market
		}
	}
	if n == 0 {
		return PriceEntry{}, false
	}
	avg := sum / float64(n)
	updated := latestAt
	if updated.IsZero() {
		updated = a.now()
	}
	return PriceEntry{
		Crop:         crop,
		CurrentPrice: int(math.Round(latest)),
		AvgPrice:     int(math.Round(avg)),
		Unit:         PriceUnit,
		Trend:        trendOf(latest/avg - 1),
		District:     district,
		Market:       market,
		Source:       "agmarknet",
		LastUpdated:  updated,
	}, true
}

func parsePrice(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, p > 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		return f, err == nil && f > 0
	}
	return 0, false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
