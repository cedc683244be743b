// Package eodhd provides a client for the EODHD market data API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
// Statement payloads routinely carry "1234.5", "N/A", or null.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" || s == "-" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client. Requests are rate limited to respect
// the provider and pass through a circuit breaker so a flapping upstream
// fails fast instead of stalling every worker on timeouts.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "eodhd",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
		},
	})

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited, breaker-guarded GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(body),
				Endpoint:   path,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	})
	return err
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// GetEOD retrieves end-of-day price data, most recent bar first.
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...interfaces.EODOption) ([]models.EODBar, error) {
	params := &interfaces.EODParams{}
	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", "d")
	urlParams.Set("order", "d") // descending, most recent first

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", symbol)

	var raw []eodBarResponse
	if err := c.get(ctx, path, urlParams, &raw); err != nil {
		return nil, err
	}

	bars := make([]models.EODBar, len(raw))
	for i, bar := range raw {
		date, _ := time.Parse("2006-01-02", bar.Date)
		bars[i] = models.EODBar{
			Date:     date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjustedClose,
			Volume:   bar.Volume,
		}
	}

	return bars, nil
}

type realTimeResponse struct {
	Code      string      `json:"code"`
	Close     flexFloat64 `json:"close"` // last trade; "NA" outside trading hours
	Bid       flexFloat64 `json:"bid"`
	Volume    int64       `json:"volume"`
	Timestamp int64       `json:"timestamp"`
}

// GetRealTimeQuote retrieves a live last-trade-or-bid quote.
func (c *Client) GetRealTimeQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error) {
	path := fmt.Sprintf("/real-time/%s", symbol)

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	// An absent or zero timestamp stays the zero time so callers can
	// substitute their own clock instead of epoch.
	var asOf time.Time
	if resp.Timestamp > 0 {
		asOf = time.Unix(resp.Timestamp, 0).UTC()
	}

	return &models.RealTimeQuote{
		Symbol:    symbol,
		LastTrade: float64(resp.Close),
		BestBid:   float64(resp.Bid),
		Volume:    resp.Volume,
		Timestamp: asOf,
	}, nil
}

// fundamentalsResponse represents the aggregate metrics payload. Statement
// data rides along under Financials and is surfaced separately via
// GetFinancialStatements.
type fundamentalsResponse struct {
	Highlights struct {
		MarketCapitalization    flexFloat64 `json:"MarketCapitalization"`
		DividendYield           flexFloat64 `json:"DividendYield"`
		ReturnOnEquityTTM       flexFloat64 `json:"ReturnOnEquityTTM"`
		ReturnOnAssetsTTM       flexFloat64 `json:"ReturnOnAssetsTTM"`
		QuarterlyRevenueGrowth  flexFloat64 `json:"QuarterlyRevenueGrowthYOY"`
		FreeCashFlowTTM         flexFloat64 `json:"FreeCashFlowTTM"`
		ReturnOnInvestedCapital flexFloat64 `json:"ReturnOnInvestedCapitalTTM"`
	} `json:"Highlights"`
	Valuation struct {
		PriceBookMRQ flexFloat64 `json:"PriceBookMRQ"`
	} `json:"Valuation"`
	SplitsDividends struct {
		ForwardAnnualDividendRate flexFloat64 `json:"ForwardAnnualDividendRate"`
	} `json:"SplitsDividends"`
}

// GetFundamentals retrieves the consolidated per-instrument metrics record.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsAggregate, error) {
	path := fmt.Sprintf("/fundamentals/%s", symbol)

	params := url.Values{}
	params.Set("filter", "Highlights,Valuation,SplitsDividends")

	var resp fundamentalsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	return &models.FundamentalsAggregate{
		Symbol:            symbol,
		MarketCap:         float64(resp.Highlights.MarketCapitalization),
		PriceToBook:       float64(resp.Valuation.PriceBookMRQ),
		DividendRate:      float64(resp.SplitsDividends.ForwardAnnualDividendRate),
		DividendYield:     float64(resp.Highlights.DividendYield),
		RevenueGrowthYOY:  float64(resp.Highlights.QuarterlyRevenueGrowth),
		ReturnOnEquityTTM: float64(resp.Highlights.ReturnOnEquityTTM),
		ReturnOnInvested:  float64(resp.Highlights.ReturnOnInvestedCapital),
		FreeCashFlowTTM:   float64(resp.Highlights.FreeCashFlowTTM),
	}, nil
}

// financialsResponse carries the raw statements. Each statement is a map of
// date -> line items; line item values arrive as strings or numbers
// depending on the issuer.
type financialsResponse struct {
	Financials struct {
		BalanceSheet struct {
			Yearly map[string]map[string]flexFloat64 `json:"yearly"`
		} `json:"Balance_Sheet"`
		IncomeStatement struct {
			Yearly map[string]map[string]flexFloat64 `json:"yearly"`
		} `json:"Income_Statement"`
		CashFlow struct {
			Yearly map[string]map[string]flexFloat64 `json:"yearly"`
		} `json:"Cash_Flow"`
	} `json:"Financials"`
}

// GetFinancialStatements retrieves raw statement line items for the most
// recent reporting period, flattened to label -> value maps.
func (c *Client) GetFinancialStatements(ctx context.Context, symbol string) (*models.FinancialStatements, error) {
	path := fmt.Sprintf("/fundamentals/%s", symbol)

	params := url.Values{}
	params.Set("filter", "Financials")

	var resp financialsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	return &models.FinancialStatements{
		Symbol:   symbol,
		Income:   latestPeriod(resp.Financials.IncomeStatement.Yearly),
		Balance:  latestPeriod(resp.Financials.BalanceSheet.Yearly),
		CashFlow: latestPeriod(resp.Financials.CashFlow.Yearly),
	}, nil
}

// latestPeriod picks the most recent reporting date (dates sort
// lexicographically as YYYY-MM-DD) and drops zero-valued labels so absent
// line items stay absent.
func latestPeriod(yearly map[string]map[string]flexFloat64) map[string]float64 {
	latest := ""
	for date := range yearly {
		if date > latest {
			latest = date
		}
	}
	if latest == "" {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(yearly[latest]))
	for label, value := range yearly[latest] {
		if value != 0 {
			out[label] = float64(value)
		}
	}
	return out
}

// GetExchangeSymbols retrieves all symbols for an exchange
func (c *Client) GetExchangeSymbols(ctx context.Context, exchange string) ([]models.Symbol, error) {
	path := fmt.Sprintf("/exchange-symbol-list/%s", exchange)

	var symbols []models.Symbol
	if err := c.get(ctx, path, nil, &symbols); err != nil {
		return nil, err
	}

	return symbols, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
