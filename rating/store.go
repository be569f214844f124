package rating

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
)

// Entry 是原始评分序列中的一条记录，Seq 单调递增。
type Entry struct {
	Seq uint64
	core.Rating
}

// ItemAverage 是物品的平均评分。
type ItemAverage struct {
	ItemID string
	Mean   float64
	Count  int
}

// Store 是只追加的评分存储，并按需派生 用户×物品 矩阵。
//
// 同一 (用户, 物品) 可以多次出现；派生矩阵时取 Seq 最大（最近写入）的一条。
type Store struct {
	mu      sync.RWMutex
	index   *catalog.Index
	min     float64
	max     float64
	entries []Entry
	seq     uint64
	matrix  *Matrix
	stale   bool
	logger  zerolog.Logger
}

// Option 配置 Store。
type Option func(*Store)

// WithRange 设置有效评分闭区间，默认 [1, 5]。
func WithRange(min, max float64) Option {
	return func(s *Store) {
		s.min, s.max = min, max
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore 创建绑定到目录的空评分存储。
func NewStore(index *catalog.Index, opts ...Option) *Store {
	min, max := (&core.DefaultRecallConfig{}).DefaultRatingRange()
	s := &Store{
		index:  index,
		min:    min,
		max:    max,
		stale:  true,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Range 返回有效评分区间。
func (s *Store) Range() (float64, float64) {
	return s.min, s.max
}

func (s *Store) validate(r core.Rating) error {
	if r.UserID == "" {
		return core.NewDomainError(core.ModuleRating, core.ErrorCodeInvalidInput, "rating: empty user id")
	}
	if r.Score < s.min || r.Score > s.max {
		return core.InvalidRating(r.Score, s.min, s.max)
	}
	if s.index != nil && !s.index.Has(r.ItemID) {
		return core.NotFound(core.ModuleRating, "item", r.ItemID)
	}
	return nil
}

// Seed 载入启动快照。未知物品与越界评分的行被跳过并计数；
// 没有任何可用行时返回 ErrEmptyRatingStore。
func (s *Store) Seed(ratings []core.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped := 0
	for _, r := range ratings {
		if err := s.validate(r); err != nil {
			skipped++
			s.logger.Debug().Err(err).Str("user", r.UserID).Str("item", r.ItemID).Msg("skip rating row")
			continue
		}
		s.appendLocked(r)
	}
	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Int("loaded", len(ratings)-skipped).Msg("rating snapshot has unusable rows")
	}
	if len(s.entries) == 0 {
		return core.ErrEmptyRatingStore
	}
	return nil
}

// Append 追加一条评分。越界返回 InvalidRating，未知物品返回 NotFound，
// 两种情况下存储均不变。成功后派生矩阵标记为过期。
func (s *Store) Append(userID, itemID string, score float64) error {
	r := core.Rating{UserID: userID, ItemID: itemID, Score: score}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(r); err != nil {
		return err
	}
	s.appendLocked(r)
	return nil
}

func (s *Store) appendLocked(r core.Rating) {
	s.seq++
	s.entries = append(s.entries, Entry{Seq: s.seq, Rating: r})
	s.stale = true
}

// Len 返回原始序列长度（含重复）。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries 返回原始序列副本。
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Stale 报告派生矩阵是否需要重建。
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// Matrix 返回派生矩阵，过期时先按 most-recent-wins 重建。
func (s *Store) Matrix() *Matrix {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale || s.matrix == nil {
		s.matrix = s.buildLocked()
		s.stale = false
		s.logger.Debug().
			Int("users", s.matrix.NumUsers()).
			Int("items", s.matrix.NumItems()).
			Msg("rating matrix rebuilt")
	}
	return s.matrix
}

func (s *Store) buildLocked() *Matrix {
	seen := make(map[string]struct{})
	users := make([]string, 0)
	for _, e := range s.entries {
		if _, ok := seen[e.UserID]; !ok {
			seen[e.UserID] = struct{}{}
			users = append(users, e.UserID)
		}
	}
	sort.Strings(users)

	var items []string
	if s.index != nil {
		items = s.index.AllIDs()
	} else {
		items = distinctItems(s.entries)
	}
	m := newMatrix(users, items)
	// entries 按 Seq 递增，后写覆盖先写
	for _, e := range s.entries {
		j, ok := m.itemIndex[e.ItemID]
		if !ok {
			continue
		}
		m.set(m.userIndex[e.UserID], j, e.Score)
	}
	return m
}

func distinctItems(entries []Entry) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range entries {
		if _, ok := seen[e.ItemID]; ok {
			continue
		}
		seen[e.ItemID] = struct{}{}
		out = append(out, e.ItemID)
	}
	sort.Strings(out)
	return out
}

// TopRated 返回按平均评分降序的前 n 个物品（同分按 ID 升序），
// 平均值基于去重后的矩阵。n <= 0 返回空。
func (s *Store) TopRated(n int) []ItemAverage {
	if n <= 0 {
		return []ItemAverage{}
	}
	m := s.Matrix()
	avgs := make([]ItemAverage, 0, m.NumItems())
	for j, id := range m.items {
		var sum float64
		count := 0
		for u := range m.users {
			k := u*len(m.items) + j
			if m.rated[k] {
				sum += m.values[k]
				count++
			}
		}
		if count == 0 {
			continue
		}
		avgs = append(avgs, ItemAverage{ItemID: id, Mean: sum / float64(count), Count: count})
	}
	sort.SliceStable(avgs, func(a, b int) bool {
		if avgs[a].Mean != avgs[b].Mean {
			return avgs[a].Mean > avgs[b].Mean
		}
		return avgs[a].ItemID < avgs[b].ItemID
	})
	if len(avgs) > n {
		avgs = avgs[:n]
	}
	return avgs
}
