// Package bridge implements broker.Gateway against an MT5 REST sidecar.
//
// The MetaTrader terminal only exposes an in-process API, so live deployments
// run a small HTTP bridge next to it; this client talks to that bridge. All
// calls carry a bearer token and are bounded by the client timeout and the
// caller's context.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rangefade/broker"
	"rangefade/market"
)

// DefaultTimeout bounds a single bridge call when the config does not set one.
const DefaultTimeout = 10 * time.Second

// Client is an HTTP client for the MT5 bridge.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a bridge client. timeout <= 0 selects DefaultTimeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError is the bridge's error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiCandle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

type candlesResponse struct {
	Symbol  string      `json:"symbol"`
	Candles []apiCandle `json:"candles"`
}

type quoteResponse struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Time   time.Time `json:"time"`
}

type orderRequest struct {
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

type orderResponse struct {
	Accepted bool   `json:"accepted"`
	Ticket   string `json:"ticket"`
	Reason   string `json:"reason"`
}

type positionResponse struct {
	Symbol     string    `json:"symbol"`
	Ticket     string    `json:"ticket"`
	Direction  string    `json:"direction"`
	Volume     float64   `json:"volume"`
	EntryPrice float64   `json:"entry_price"`
	Profit     float64   `json:"profit"`
	OpenTime   time.Time `json:"open_time"`
}

type closeRequest struct {
	Ticket string `json:"ticket"`
}

type closeResponse struct {
	Closed      bool    `json:"closed"`
	ExitPrice   float64 `json:"exit_price"`
	RealizedPnL float64 `json:"realized_pnl"`
	Reason      string  `json:"reason"`
}

type symbolResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tradable    bool    `json:"tradable"`
	Spread      float64 `json:"spread"`
	Digits      int     `json:"digits"`
}

// HealthResponse reports bridge and terminal status; used by preflight only.
type HealthResponse struct {
	Connected bool    `json:"connected"`
	Account   string  `json:"account"`
	Balance   float64 `json:"balance"`
	Server    string  `json:"server"`
}

// Candles implements broker.Gateway.
func (c *Client) Candles(ctx context.Context, symbol string, g market.Granularity, count int) ([]market.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("granularity", string(g))
	q.Set("count", strconv.Itoa(count))

	var resp candlesResponse
	if err := c.get(ctx, "/v1/candles?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("get candles %s: %w", symbol, err)
	}

	out := make([]market.Candle, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		out = append(out, market.Candle{
			Time:   ac.Time,
			Open:   ac.Open,
			High:   ac.High,
			Low:    ac.Low,
			Close:  ac.Close,
			Volume: ac.Volume,
		})
	}
	return out, nil
}

// Quote implements broker.Gateway.
func (c *Client) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	var resp quoteResponse
	if err := c.get(ctx, "/v1/quote?symbol="+url.QueryEscape(symbol), &resp); err != nil {
		return market.Quote{}, fmt.Errorf("get quote %s: %w", symbol, err)
	}
	return market.Quote{
		Symbol: resp.Symbol,
		Bid:    resp.Bid,
		Ask:    resp.Ask,
		Time:   resp.Time,
	}, nil
}

// SubmitOrder implements broker.Gateway.
func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	body := orderRequest{
		Symbol:     req.Symbol,
		Direction:  string(req.Direction),
		Volume:     req.Volume,
		Price:      req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	}

	var resp orderResponse
	if err := c.post(ctx, "/v1/orders", body, &resp); err != nil {
		return broker.OrderResult{}, fmt.Errorf("submit order %s: %w", req.Symbol, err)
	}
	return broker.OrderResult{
		Accepted: resp.Accepted,
		VenueRef: resp.Ticket,
		Reason:   resp.Reason,
	}, nil
}

// OpenPosition implements broker.Gateway. A nil position with nil error means
// the venue holds no position for the symbol.
func (c *Client) OpenPosition(ctx context.Context, symbol string) (*broker.VenuePosition, error) {
	var resp positionResponse
	err := c.get(ctx, "/v1/positions/"+url.PathEscape(symbol), &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get position %s: %w", symbol, err)
	}
	return &broker.VenuePosition{
		Symbol:     resp.Symbol,
		VenueRef:   resp.Ticket,
		Direction:  market.Direction(resp.Direction),
		Volume:     resp.Volume,
		EntryPrice: resp.EntryPrice,
		Profit:     resp.Profit,
		OpenTime:   resp.OpenTime,
	}, nil
}

// ClosePosition implements broker.Gateway.
func (c *Client) ClosePosition(ctx context.Context, symbol, venueRef string) (broker.CloseResult, error) {
	var resp closeResponse
	if err := c.post(ctx, "/v1/positions/"+url.PathEscape(symbol)+"/close", closeRequest{Ticket: venueRef}, &resp); err != nil {
		return broker.CloseResult{}, fmt.Errorf("close position %s: %w", symbol, err)
	}
	return broker.CloseResult{
		Closed:      resp.Closed,
		ExitPrice:   resp.ExitPrice,
		RealizedPnL: resp.RealizedPnL,
		Reason:      resp.Reason,
	}, nil
}

// DescribeSymbol implements broker.Gateway.
func (c *Client) DescribeSymbol(ctx context.Context, symbol string) (broker.SymbolInfo, error) {
	var resp symbolResponse
	if err := c.get(ctx, "/v1/symbols/"+url.PathEscape(symbol), &resp); err != nil {
		return broker.SymbolInfo{}, fmt.Errorf("describe symbol %s: %w", symbol, err)
	}
	return broker.SymbolInfo{
		Name:        resp.Name,
		Description: resp.Description,
		Tradable:    resp.Tradable,
		Spread:      resp.Spread,
		Digits:      resp.Digits,
	}, nil
}

// Health checks bridge and terminal connectivity.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/v1/health", &resp); err != nil {
		return HealthResponse{}, fmt.Errorf("bridge health: %w", err)
	}
	return resp, nil
}

// statusError carries the HTTP status for callers that branch on it.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.code, e.msg)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		msg := string(data)
		if json.Unmarshal(data, &ae) == nil && ae.Message != "" {
			msg = ae.Message
		}
		return &statusError{code: resp.StatusCode, msg: msg}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
