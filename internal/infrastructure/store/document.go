package store

import (
	"context"
	"errors"

	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// LoadJSON 讀取 JSON 文件到 v
// 鍵不存在、讀取失敗或解析失敗時回傳 false，v 保持呼叫端給的預設值
func LoadJSON(ctx context.Context, s Store, key string, v interface{}) bool {
	if s == nil {
		return false
	}
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			common.LogWarn("讀取儲存失敗，使用預設值",
				zap.String("key", key),
				zap.Error(common.Wrap(common.ErrPersistence, err)),
			)
		}
		return false
	}
	if err := common.ParseJSON(raw, v); err != nil {
		common.LogWarn("儲存內容解析失敗，使用預設值",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// SaveJSON 將 v 序列化後寫入
// 失敗只記錄不回傳，呼叫端不因持久化失敗而中斷
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) {
	if s == nil {
		return
	}
	data, err := common.ToJSON(v)
	if err != nil {
		common.LogWarn("序列化失敗，略過寫入", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.Set(ctx, key, data); err != nil {
		common.LogWarn("寫入儲存失敗，已忽略",
			zap.String("key", key),
			zap.Error(common.Wrap(common.ErrPersistence, err)),
		)
	}
}
