// Package messaging 将资产领域事件发布到 Kafka
package messaging

import (
	"context"
	"time"

	"github.com/atlasquant/tradedesk/internal/asset/domain"
	"github.com/atlasquant/tradedesk/pkg/mq"
)

const assetSyncedTopic = "tradedesk.asset.synced"

// AssetSyncedEvent 资产同步事件载荷
type AssetSyncedEvent struct {
	AssetID  string    `json:"asset_id"`
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	Status   string    `json:"status"`
	Tradable bool      `json:"tradable"`
	SyncedAt time.Time `json:"synced_at"`
}

type kafkaEventPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaEventPublisher 创建基于 Kafka 的资产事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaEventPublisher{producer: producer}
}

func (p *kafkaEventPublisher) PublishAssetSynced(ctx context.Context, asset *domain.Asset) error {
	event := AssetSyncedEvent{
		AssetID:  asset.AssetID,
		Symbol:   asset.Symbol,
		Exchange: asset.Exchange,
		Status:   string(asset.Status),
		Tradable: asset.Tradable,
		SyncedAt: time.Now().UTC(),
	}
	return p.producer.SendMessage(ctx, assetSyncedTopic, asset.AssetID, event)
}
