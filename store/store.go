// Package store 提供 core.Store / core.ListStore 的实现。
//
// 接口定义在 core 包，此包只包含实现：
//
//	var s core.ListStore = store.NewMemoryStore()
//	var r core.ListStore, _ = store.NewRedisStore(store.RedisConfig{Addr: "localhost:6379"})
package store
