package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-engine/internal/infrastructure/config"
	"recipe-engine/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	breakerName      = "external-recipes"
	defaultNumber    = 10
	complexSearchURL = "/recipes/complexSearch"
)

// Options 外部搜尋參數
type Options struct {
	Number       int
	MaxReadyTime int
	Cuisine      string
	Diet         string
	Type         string
}

// Client 外部食譜 API 客戶端
// 自帶短期回應快取與斷路器，生命週期由呼叫端管理
type Client struct {
	cfg     config.ExternalConfig
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*searchResponse]
	cache   *responseCache
}

// NewClient 創建外部食譜 API 客戶端
func NewClient(cfg config.ExternalConfig) *Client {
	return newClient(cfg, time.Now)
}

func newClient(cfg config.ExternalConfig, now func() time.Time) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("x-api-key", cfg.APIKey)

	breaker := gobreaker.NewCircuitBreaker[*searchResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("斷路器狀態變更",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// 額度用盡不是服務故障，不計入失敗次數
		IsSuccessful: func(err error) bool {
			return err == nil || common.IsQuotaExceeded(err)
		},
	})

	return &Client{
		cfg:     cfg,
		http:    client,
		breaker: breaker,
		cache:   newResponseCache(cfg.CacheTTL, now),
	}
}

// Enabled 是否啟用
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled && c.cfg.APIKey != ""
}

// FindByIngredients 依食材搜尋食譜
func (c *Client) FindByIngredients(ctx context.Context, pantry []string, opts Options) ([]common.Recipe, error) {
	ingredients := common.NormalizeList(pantry)
	if len(ingredients) == 0 {
		return []common.Recipe{}, nil
	}
	params := c.baseParams(opts)
	params["includeIngredients"] = strings.Join(ingredients, ",")
	params["sort"] = "max-used-ingredients"
	return c.search(ctx, params)
}

// Search 依關鍵字搜尋食譜
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]common.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []common.Recipe{}, nil
	}
	params := c.baseParams(opts)
	params["query"] = query
	return c.search(ctx, params)
}

// Clear 清除回應快取
func (c *Client) Clear() {
	c.cache.clear()
	common.LogInfo("外部食譜回應快取已清除")
}

func (c *Client) baseParams(opts Options) map[string]string {
	number := opts.Number
	if number <= 0 {
		number = defaultNumber
	}
	params := map[string]string{
		"number":               strconv.Itoa(number),
		"addRecipeInformation": "true",
		"fillIngredients":      "true",
		"instructionsRequired": "true",
	}
	if opts.MaxReadyTime > 0 {
		params["maxReadyTime"] = strconv.Itoa(opts.MaxReadyTime)
	}
	if opts.Cuisine != "" {
		params["cuisine"] = opts.Cuisine
	}
	if opts.Diet != "" {
		params["diet"] = opts.Diet
	}
	if opts.Type != "" {
		params["type"] = opts.Type
	}
	return params
}

func (c *Client) search(ctx context.Context, params map[string]string) ([]common.Recipe, error) {
	if !c.Enabled() {
		return nil, common.Wrap(common.ErrServiceUnavailable, errors.New("external recipe source disabled"))
	}

	key := cacheKey(params)
	if recipes, ok := c.cache.get(key); ok {
		common.LogCacheHit("external", key)
		return recipes, nil
	}
	common.LogCacheMiss("external", key)

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*searchResponse, error) {
		return c.do(ctx, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = common.Wrap(common.ErrServiceUnavailable, err)
		}
		common.LogSourceCall("external", time.Since(start), 0, err)
		return nil, err
	}

	recipes := toRecipes(resp.Results)
	common.LogSourceCall("external", time.Since(start), len(recipes), nil)
	c.cache.set(key, recipes)
	return recipes, nil
}

func (c *Client) do(ctx context.Context, params map[string]string) (*searchResponse, error) {
	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(complexSearchURL)
	if err != nil {
		return nil, common.Wrap(common.ErrServiceUnavailable, fmt.Errorf("request external recipes: %w", err))
	}

	if err := statusError(resp.StatusCode(), resp.String()); err != nil {
		return nil, err
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.Wrap(common.ErrMalformedUpstream, fmt.Errorf("parse external response: %w", err))
	}
	return &result, nil
}

// statusError 將 HTTP 狀態對應到錯誤分類
// 402 與每日點數上限視為額度用盡，401/403 視為服務不可用
func statusError(status int, body string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	detail := fmt.Errorf("external recipes returned %d: %s", status, truncate(body, 200))
	switch {
	case status == http.StatusPaymentRequired,
		strings.Contains(strings.ToLower(body), "daily points limit"):
		return common.Wrap(common.ErrQuotaExceeded, detail)
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status == http.StatusTooManyRequests:
		return common.Wrap(common.ErrServiceUnavailable, detail)
	}
	return common.Wrap(common.ErrUpstreamFailure, detail)
}

func cacheKey(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, k+"="+v)
	}
	return common.HashString(strings.Join(common.NormalizeList(pairs), "&"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
