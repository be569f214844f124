package core

import "context"

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 推荐核心本身不依赖存储；存储只用于评分持久化日志与推荐历史
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type Store interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	// Get 读取单个 key 的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// ListStore 是 Store 的扩展接口，支持只追加的列表。
//
// 使用场景：
//   - 评分持久化日志（rating.StoreLog）
//   - 推荐历史（history.StoreRecorder）
type ListStore interface {
	Store

	// RPush 向列表尾部追加元素，返回追加后的长度
	RPush(ctx context.Context, key string, values ...[]byte) (int64, error)

	// LRange 读取列表 [start, stop] 区间（含两端，stop = -1 表示到末尾）
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// LLen 返回列表长度
	LLen(ctx context.Context, key string) (int64, error)
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
