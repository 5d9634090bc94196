// Package finmate talks to the FinMate server: the conversational endpoint
// and the expense, analysis, and budget-tip APIs.
package finmate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/model"
)

// DefaultExpenseLimit is how many recent expenses the list endpoints return.
const DefaultExpenseLimit = 5

// RejectedError is returned when the server answers 2xx with success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "Unknown error"
	}
	return e.Message
}

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	// Cookie is sent verbatim, e.g. "session=abc", for servers behind a login.
	Cookie  string
	Timeout time.Duration
}

// Client is a JSON client for the FinMate server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cookie     string
}

// NewClient creates a client for the server at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: server base URL is required", common.ErrMissingConfig)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid server base URL %q", common.ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		cookie:     cfg.Cookie,
	}, nil
}

type envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Chat posts one message to the conversational endpoint and returns its reply.
func (c *Client) Chat(ctx context.Context, input string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	body := map[string]string{"input": input}
	if err := c.do(ctx, http.MethodPost, "/finmate", nil, body, chatPayload, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// ListExpenses returns the most recent expenses.
func (c *Client) ListExpenses(ctx context.Context, limit int) ([]model.Expense, error) {
	if limit <= 0 {
		limit = DefaultExpenseLimit
	}

	var out struct {
		envelope
		Data []model.Expense `json:"data"`
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/api/expenses", query, nil, expensesPayload, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &RejectedError{Message: out.Error}
	}
	return out.Data, nil
}

// Analyze returns the month-over-month spending analysis.
func (c *Client) Analyze(ctx context.Context) (model.Analysis, error) {
	var out struct {
		envelope
		Data model.Analysis `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/expenses/analyze", nil, nil, analysisPayload, &out); err != nil {
		return model.Analysis{}, err
	}
	if !out.Success {
		return model.Analysis{}, &RejectedError{Message: out.Error}
	}
	return out.Data, nil
}

// BudgetTips returns general tips, or tips for one category when category is set.
func (c *Client) BudgetTips(ctx context.Context, useAI bool, category string) (model.BudgetTips, error) {
	query := url.Values{"use_ai": {strconv.FormatBool(useAI)}}
	if category != "" {
		query.Set("category", strings.ToLower(category))
	}

	var out struct {
		envelope
		Data model.BudgetTips `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/budget/tips", query, nil, tipsPayload, &out); err != nil {
		return model.BudgetTips{}, err
	}
	if !out.Success {
		return model.BudgetTips{}, &RejectedError{Message: out.Error}
	}
	return out.Data, nil
}

// UpdateExpense replaces the editable fields of an expense.
func (c *Client) UpdateExpense(ctx context.Context, id model.ExpenseID, update model.ExpenseUpdate) error {
	var out envelope
	if err := c.do(ctx, http.MethodPut, "/api/expenses/"+url.PathEscape(string(id)), nil, update, envelopePayload, &out); err != nil {
		return err
	}
	if !out.Success {
		return &RejectedError{Message: out.Error}
	}
	return nil
}

// DeleteExpense permanently removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, id model.ExpenseID) error {
	var out envelope
	if err := c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(string(id)), nil, nil, envelopePayload, &out); err != nil {
		return err
	}
	if !out.Success {
		return &RejectedError{Message: out.Error}
	}
	return nil
}

// AddExpense records an expense through the conversational endpoint. The
// server keeps per-user conversational memory, so the amount, the category,
// and the date are posted as three separate turns in that order. The reply to
// the last turn is the server's confirmation. The first failure aborts.
func (c *Client) AddExpense(ctx context.Context, amount decimal.Decimal, category string, date time.Time) (string, error) {
	steps := []struct {
		name  string
		input string
	}{
		{name: "amount", input: amount.String()},
		{name: "category", input: category},
		{name: "date", input: date.Format(model.DateLayout)},
	}

	var reply string
	for _, step := range steps {
		resp, err := c.Chat(ctx, step.input)
		if err != nil {
			return "", fmt.Errorf("failed to send expense %s: %w", step.name, err)
		}
		reply = resp
	}
	return reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, schema *jsonschema.Schema, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.ClassifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.ClassifyTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	slog.Debug("finmate request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(respBody, &env)
		return &common.ServerError{Status: resp.StatusCode, Message: env.Error}
	}

	return decodeValidated(respBody, schema, out)
}
