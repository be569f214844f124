package rating

// Matrix 是 用户×物品 的稠密评分矩阵。
//
// 行为评分表中出现过的用户（升序），列为目录物品（目录顺序）。
// 每个单元格带有显式的 rated 标记：未评分与任何合法分值都可区分。
// Matrix 构建后只读，可被多个 goroutine 并发读取。
type Matrix struct {
	users     []string
	userIndex map[string]int
	items     []string
	itemIndex map[string]int
	values    []float64
	rated     []bool
}

func newMatrix(users, items []string) *Matrix {
	m := &Matrix{
		users:     users,
		userIndex: make(map[string]int, len(users)),
		items:     items,
		itemIndex: make(map[string]int, len(items)),
		values:    make([]float64, len(users)*len(items)),
		rated:     make([]bool, len(users)*len(items)),
	}
	for i, u := range users {
		m.userIndex[u] = i
	}
	for j, it := range items {
		m.itemIndex[it] = j
	}
	return m
}

func (m *Matrix) set(u, i int, score float64) {
	m.values[u*len(m.items)+i] = score
	m.rated[u*len(m.items)+i] = true
}

// Users 返回行用户（升序副本）。
func (m *Matrix) Users() []string {
	out := make([]string, len(m.users))
	copy(out, m.users)
	return out
}

// Items 返回列物品（目录顺序副本）。
func (m *Matrix) Items() []string {
	out := make([]string, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Matrix) NumUsers() int { return len(m.users) }
func (m *Matrix) NumItems() int { return len(m.items) }

// HasUser 判断用户是否至少有一条评分。
func (m *Matrix) HasUser(userID string) bool {
	_, ok := m.userIndex[userID]
	return ok
}

// UserIndex 返回用户所在行号。
func (m *Matrix) UserIndex(userID string) (int, bool) {
	i, ok := m.userIndex[userID]
	return i, ok
}

// Get 返回 (用户, 物品) 的评分；未评分或未知时 ok 为 false。
func (m *Matrix) Get(userID, itemID string) (float64, bool) {
	u, ok := m.userIndex[userID]
	if !ok {
		return 0, false
	}
	i, ok := m.itemIndex[itemID]
	if !ok {
		return 0, false
	}
	k := u*len(m.items) + i
	return m.values[k], m.rated[k]
}

// Row 返回用户整行评分的副本；未评分单元格值为 0，rated 为 false。
func (m *Matrix) Row(userID string) ([]float64, []bool, bool) {
	u, ok := m.userIndex[userID]
	if !ok {
		return nil, nil, false
	}
	vals, rated := m.RowAt(u)
	outV := make([]float64, len(vals))
	outR := make([]bool, len(rated))
	copy(outV, vals)
	copy(outR, rated)
	return outV, outR, true
}

// RowAt 按行号返回内部切片，调用方不得修改。
func (m *Matrix) RowAt(u int) ([]float64, []bool) {
	n := len(m.items)
	return m.values[u*n : (u+1)*n], m.rated[u*n : (u+1)*n]
}
