// Package client talks to the safeboard HTTP API. Client is a thin typed
// wrapper over the endpoints; Board keeps the selected block's snapshot and
// derives the board views from it.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/boardview"
	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// APIError non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("safeboard api: %d %s", e.StatusCode, e.Message)
}

type failBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StatusUpdate body of POST /api/status
type StatusUpdate struct {
	Block     string `json:"block"`
	Floor     int    `json:"floor"`
	Unit      int    `json:"unit"`
	Status    string `json:"status,omitempty"`
	Remark    string `json:"remark,omitempty"`
	Source    string `json:"source,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

type NewsInput struct {
	Content  string `json:"content"`
	Link     string `json:"link,omitempty"`
	LinkText string `json:"linkText,omitempty"`
}

type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New client for baseURL (e.g. http://localhost:8080). The session cookie
// set by Login is kept in the client's cookie jar.
func New(baseURL string, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryReads).
		SetCookieJar(jar).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, logger: logger}, nil
}

// retryReads retries GETs on transport errors and 5xx. Writes are never
// retried: a write that timed out may already be committed.
func retryReads(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.httpClient.R().SetContext(ctx).SetError(&failBody{})
}

// check turns transport errors and non-2xx responses into errors.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Warn("Safeboard API call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if fb, ok := resp.Error().(*failBody); ok && fb.Error != "" {
		msg = fb.Error
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	var out struct {
		Success bool               `json:"success"`
		User    domain.SessionUser `json:"user"`
	}
	resp, err := c.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/login")
	if err := c.check("login", resp, err); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Check returns nil when not logged in.
func (c *Client) Check(ctx context.Context) (*domain.SessionUser, error) {
	var out struct {
		Authenticated bool                `json:"authenticated"`
		User          *domain.SessionUser `json:"user"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/api/auth/check")
	if err := c.check("check", resp, err); err != nil {
		return nil, err
	}
	if !out.Authenticated {
		return nil, nil
	}
	return out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.request(ctx).Post("/api/auth/logout")
	return c.check("logout", resp, err)
}

func (c *Client) Blocks(ctx context.Context) ([]domain.Block, error) {
	var out []domain.Block
	resp, err := c.request(ctx).SetResult(&out).Get("/api/blocks")
	if err := c.check("blocks", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchBlock(ctx context.Context, block string) (domain.BlockUnits, error) {
	var out struct {
		Units domain.BlockUnits `json:"units"`
	}
	resp, err := c.request(ctx).
		SetPathParam("block", block).
		SetResult(&out).
		Get("/api/blocks/{block}/units")
	if err := c.check("fetch block", resp, err); err != nil {
		return nil, err
	}
	if out.Units == nil {
		out.Units = domain.BlockUnits{}
	}
	return out.Units, nil
}

// UpdateStatus returns the record as stored by the server.
func (c *Client) UpdateStatus(ctx context.Context, upd StatusUpdate) (domain.UnitRecord, error) {
	var out struct {
		Success bool              `json:"success"`
		Record  domain.UnitRecord `json:"record"`
	}
	resp, err := c.request(ctx).SetBody(upd).SetResult(&out).Post("/api/status")
	if err := c.check("update status", resp, err); err != nil {
		return domain.UnitRecord{}, err
	}
	return out.Record, nil
}

// BoardView server-side projection of block under filter.
func (c *Client) BoardView(ctx context.Context, block string, f boardview.FilterState) (*boardview.Board, error) {
	var out boardview.Board
	resp, err := c.request(ctx).
		SetPathParam("block", block).
		SetQueryParams(map[string]string{
			"status":    string(f.StatusFilter),
			"hasRemark": strconv.FormatBool(f.HasRemark),
			"sortBy":    string(f.SortBy),
			"sortOrder": string(f.SortOrder),
		}).
		SetResult(&out).
		Get("/api/blocks/{block}/view")
	if err := c.check("board view", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportBlock downloads the xlsx workbook of block.
func (c *Client) ExportBlock(ctx context.Context, block string) ([]byte, error) {
	resp, err := c.request(ctx).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		SetPathParam("block", block).
		Get("/api/blocks/{block}/export.xlsx")
	if err := c.check("export block", resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// ListNews newest first; limit <= 0 uses the server default.
func (c *Client) ListNews(ctx context.Context, limit int) ([]domain.NewsItem, error) {
	var out []domain.NewsItem
	req := c.request(ctx).SetResult(&out)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/api/news")
	if err := c.check("list news", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddNews(ctx context.Context, in NewsInput) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	resp, err := c.request(ctx).SetBody(in).SetResult(&out).Post("/api/news")
	if err := c.check("add news", resp, err); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) DeleteNews(ctx context.Context, id string) error {
	resp, err := c.request(ctx).SetQueryParam("id", id).Delete("/api/news")
	return c.check("delete news", resp, err)
}

// EditNews replaces item id: delete, then add. The edited item gets a new id
// and moves to the top of the feed.
func (c *Client) EditNews(ctx context.Context, id string, in NewsInput) (string, error) {
	if err := c.DeleteNews(ctx, id); err != nil {
		return "", err
	}
	return c.AddNews(ctx, in)
}
