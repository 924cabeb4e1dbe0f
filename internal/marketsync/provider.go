// Package marketsync 从行情数据提供方拉取资产目录并写入本地台账
package marketsync

import (
	"context"
	"fmt"
	"time"

	"github.com/atlasquant/tradedesk/pkg/config"
	"github.com/go-resty/resty/v2"
)

// Account 提供方账户信息
type Account struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Currency string `json:"currency"`
}

// ProviderAsset 提供方返回的资产行
type ProviderAsset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Class        string `json:"class"`
	Exchange     string `json:"exchange"`
	Status       string `json:"status"`
	Tradable     bool   `json:"tradable"`
	Marginable   bool   `json:"marginable"`
	Shortable    bool   `json:"shortable"`
	EasyToBorrow bool   `json:"easy_to_borrow"`
}

// ProviderClient 行情数据提供方 HTTP 客户端
type ProviderClient struct {
	http *resty.Client
}

// NewProviderClient 创建提供方客户端，带重试与鉴权头
func NewProviderClient(cfg config.SyncConfig) *ProviderClient {
	client := resty.New().
		SetBaseURL(cfg.ProviderBaseURL).
		SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2 * time.Second).
		SetHeader("APCA-API-KEY-ID", cfg.ProviderAPIKey).
		SetHeader("APCA-API-SECRET-KEY", cfg.ProviderAPISecret)
	return &ProviderClient{http: client}
}

// AccountInfo 查询账户状态，用于同步前的连通性检查
func (c *ProviderClient) AccountInfo(ctx context.Context) (*Account, error) {
	var account Account
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&account).
		Get("/v2/account")
	if err != nil {
		return nil, fmt.Errorf("provider account request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provider account request: status %d", resp.StatusCode())
	}
	return &account, nil
}

// ListAssets 拉取全部资产目录
func (c *ProviderClient) ListAssets(ctx context.Context) ([]ProviderAsset, error) {
	var assets []ProviderAsset
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&assets).
		Get("/v2/assets")
	if err != nil {
		return nil, fmt.Errorf("provider assets request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provider assets request: status %d", resp.StatusCode())
	}
	return assets, nil
}
