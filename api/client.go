package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bilitool/constant"
	"bilitool/request"

	"github.com/go-resty/resty/v2"
	browser "github.com/itzngga/fake-useragent"
	"go.uber.org/zap"
)

type Options struct {
	BaseURL     string
	UserAgent   string
	Proxy       string
	Timeout     time.Duration
	RetryCount  int
	RetryWait   time.Duration
	Credentials request.Credentials
}

// Client talks to the platform's web API using the session cookies.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = constant.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constant.HTTPTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = browser.Chrome()
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetTLSClientConfig(&tls.Config{MinVersion: tls.VersionTLS12}).
		SetCookies(opts.Credentials.Cookies()).
		SetHeaders(map[string]string{
			"accept":          "application/json, text/plain, */*",
			"accept-language": "zh-CN,zh;q=0.9,en;q=0.8",
			"origin":          constant.Origin,
			"referer":         constant.Origin + "/",
			"sec-fetch-dest":  "empty",
			"sec-fetch-mode":  "cors",
			"sec-fetch-site":  "same-site",
			"user-agent":      opts.UserAgent,
		})

	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{http: client, logger: logger}
}

func (c *Client) LoginByCookie(ctx context.Context) (*request.Response[request.UserInfo], error) {
	return get[request.UserInfo](ctx, c, constant.NavPath)
}

func (c *Client) GetDailyTaskRewardInfo(ctx context.Context) (*request.Response[request.DailyTaskInfo], error) {
	return get[request.DailyTaskInfo](ctx, c, constant.ExpRewardPath)
}

func get[T any](ctx context.Context, c *Client, path string) (*request.Response[T], error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	c.logger.Debug("API response",
		zap.String("path", path),
		zap.Int("status", res.StatusCode()),
		zap.Duration("elapsed", res.Time()))

	if res.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %s", path, res.Status())
	}

	var out request.Response[T]
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return nil, fmt.Errorf("GET %s: decode response: %w", path, err)
	}

	return &out, nil
}
