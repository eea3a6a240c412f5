package recipe

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand 可注入的亂數來源，可並行使用
// 測試固定種子即可得到可重現的輸出
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand 以固定種子建立亂數來源
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewEntropyRand 以時間與系統亂數建立亂數來源
func NewEntropyRand() *Rand {
	return &Rand{r: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))}
}

// IntN 回傳 [0, n) 的亂數，n <= 0 時回傳 0
func (r *Rand) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.IntN(n)
}

// Shuffle 原地打亂
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.Shuffle(n, swap)
}

// Pick 隨機取一個元素
func Pick[T any](r *Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.IntN(len(items))]
}
