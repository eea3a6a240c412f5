package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"recipe-engine/internal/infrastructure/config"
	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	storeKey          = "cache:recipes"
	defaultTTL        = 24 * time.Hour
	defaultMaxEntries = 50
	keyHashLen        = 16
	persistTimeout    = 5 * time.Second
)

// Generator 快取未命中時產生食譜
type Generator func(ctx context.Context, pantry []string, prefs *common.DerivedPreferences) []common.Recipe

// PreferenceSource 取得使用者偏好
type PreferenceSource interface {
	GetDerivedPreferences(ctx context.Context, userID string) common.DerivedPreferences
}

// Entry 快取條目
type Entry struct {
	PantryHash     string          `json:"pantry_hash"`
	PreferenceHash string          `json:"preference_hash"`
	Recipes        []common.Recipe `json:"recipes"`
	GeneratedAt    time.Time       `json:"generated_at"`
	AccessCount    int             `json:"access_count"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
}

// Result 查詢結果
type Result struct {
	Recipes   []common.Recipe `json:"recipes"`
	FromCache bool            `json:"from_cache"`
}

// Stats 快取統計
type Stats struct {
	Size       int   `json:"size"`
	MaxEntries int   `json:"max_entries"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
}

// Manager 食譜結果快取
// 條目以單一文件存在 store，啟動後第一次使用時載入
type Manager struct {
	store      store.Store
	generate   Generator
	prefs      PreferenceSource
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	loaded  bool
	entries map[string]*Entry
	stats   Stats
	seq     uint64

	// 背景寫入，較舊的快照會被略過
	writeMu sync.Mutex
	saved   uint64
	pending sync.WaitGroup
}

// NewManager 創建快取管理器
func NewManager(cfg config.ResultCacheConfig, s store.Store, generate Generator, prefs PreferenceSource) *Manager {
	m := &Manager{
		store:      s,
		generate:   generate,
		prefs:      prefs,
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
		entries:    make(map[string]*Entry),
	}
	if m.ttl <= 0 {
		m.ttl = defaultTTL
	}
	if m.maxEntries <= 0 {
		m.maxEntries = defaultMaxEntries
	}

	common.LogInfo("食譜快取已初始化",
		zap.Duration("ttl", m.ttl),
		zap.Int("max_entries", m.maxEntries),
	)
	return m
}

// WithClock 替換時間來源
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// GetOrGenerate 取得快取的食譜，未命中或強制刷新時重新產生
// 產生的結果一定回傳給呼叫端，寫入失敗只記錄
func (m *Manager) GetOrGenerate(ctx context.Context, pantry []string, userID string, forceRefresh bool) Result {
	var prefs *common.DerivedPreferences
	if userID != "" && m.prefs != nil {
		p := m.prefs.GetDerivedPreferences(ctx, userID)
		prefs = &p
	}
	key := Key(pantry, prefs)

	m.mu.Lock()
	m.load(ctx)
	now := m.now()
	if !forceRefresh {
		if e, ok := m.entries[key]; ok {
			if now.Sub(e.GeneratedAt) <= m.ttl {
				e.AccessCount++
				e.LastAccessedAt = now
				m.stats.Hits++
				recipes := append([]common.Recipe(nil), e.Recipes...)
				m.persistLocked(ctx)
				m.mu.Unlock()
				common.LogCacheHit("recipes", key)
				return Result{Recipes: recipes, FromCache: true}
			}
			delete(m.entries, key)
			m.stats.Evictions++
		}
	}
	m.stats.Misses++
	m.mu.Unlock()
	common.LogCacheMiss("recipes", key)

	// 產生時不持有鎖
	recipes := m.generate(ctx, pantry, prefs)
	if len(recipes) == 0 || anyGuidance(recipes) {
		return Result{Recipes: recipes}
	}

	m.mu.Lock()
	now = m.now()
	pantryHash, prefHash := splitKey(key)
	m.entries[key] = &Entry{
		PantryHash:     pantryHash,
		PreferenceHash: prefHash,
		Recipes:        recipes,
		GeneratedAt:    now,
		LastAccessedAt: now,
	}
	m.evict(now)
	m.persistLocked(ctx)
	m.mu.Unlock()
	return Result{Recipes: recipes}
}

// Stats 取得統計
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Size = len(m.entries)
	s.MaxEntries = m.maxEntries
	return s
}

// Clear 清空快取
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.entries = make(map[string]*Entry)
	m.loaded = true
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	// 等進行中的寫入結束，較舊的快照之後會被略過
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.saved = max(m.saved, seq)
	if m.store != nil {
		if err := m.store.Remove(ctx, storeKey); err != nil {
			common.LogWarn("清除快取失敗，已忽略", zap.Error(common.Wrap(common.ErrPersistence, err)))
		}
	}
	common.LogInfo("食譜快取已清空")
}

func (m *Manager) load(ctx context.Context) {
	if m.loaded {
		return
	}
	m.loaded = true
	stored := make(map[string]*Entry)
	if store.LoadJSON(ctx, m.store, storeKey, &stored) && stored != nil {
		m.entries = stored
	}
	m.evict(m.now())
}

// persistLocked 在持有 mu 時複製條目，於背景寫入 store
// 呼叫端不等待寫入完成，寫入失敗由 SaveJSON 記錄
func (m *Manager) persistLocked(ctx context.Context) {
	if m.store == nil {
		return
	}
	m.seq++
	seq := m.seq
	snapshot := make(map[string]Entry, len(m.entries))
	for k, e := range m.entries {
		snapshot[k] = *e
	}

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		m.writeMu.Lock()
		defer m.writeMu.Unlock()
		if seq <= m.saved {
			return
		}
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		store.SaveJSON(wctx, m.store, storeKey, snapshot)
		m.saved = seq
	}()
}

// Flush 等待背景寫入完成
func (m *Manager) Flush() {
	m.pending.Wait()
}

// evict 先丟棄過期條目，超過上限時保留分數最高者
// 分數為存取次數加上 0 到 1 的新近度
func (m *Manager) evict(now time.Time) {
	for key, e := range m.entries {
		if now.Sub(e.GeneratedAt) > m.ttl {
			delete(m.entries, key)
			m.stats.Evictions++
		}
	}
	if len(m.entries) <= m.maxEntries {
		return
	}

	type ranked struct {
		key   string
		score float64
	}
	list := make([]ranked, 0, len(m.entries))
	for key, e := range m.entries {
		list = append(list, ranked{key: key, score: float64(e.AccessCount) + m.recency(e, now)})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].key < list[j].key
	})
	for _, r := range list[m.maxEntries:] {
		delete(m.entries, r.key)
		m.stats.Evictions++
	}
	common.LogDebug("快取已淘汰", zap.Int("removed", len(list)-m.maxEntries))
}

func (m *Manager) recency(e *Entry, now time.Time) float64 {
	age := now.Sub(e.LastAccessedAt)
	if age <= 0 {
		return 1
	}
	return max(0, 1-float64(age)/float64(m.ttl))
}

// Key 由食材與偏好快照產生快取鍵，食材順序與大小寫不影響結果
func Key(pantry []string, prefs *common.DerivedPreferences) string {
	pantryHash := common.HashString(strings.Join(common.NormalizeList(pantry), ","))[:keyHashLen]
	prefHash := common.HashString(preferenceSnapshot(prefs))[:keyHashLen]
	return pantryHash + ":" + prefHash
}

func splitKey(key string) (string, string) {
	pantryHash, prefHash, _ := strings.Cut(key, ":")
	return pantryHash, prefHash
}

func preferenceSnapshot(prefs *common.DerivedPreferences) string {
	if prefs == nil {
		return "none"
	}
	return fmt.Sprintf("pi=%s|di=%s|pc=%s|dc=%s|t=%.1f",
		strings.Join(common.NormalizeList(prefs.PreferredIngredients), ","),
		strings.Join(common.NormalizeList(prefs.DislikedIngredients), ","),
		strings.Join(common.NormalizeList(prefs.PreferredCuisines), ","),
		strings.Join(common.NormalizeList(prefs.DislikedCuisines), ","),
		prefs.AverageCookingTimeMinutes,
	)
}

func anyGuidance(recipes []common.Recipe) bool {
	for _, r := range recipes {
		if r.IsGuidance() {
			return true
		}
	}
	return false
}
