package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/pipeline"
)

// 使用配置驱动的后处理时，需在入口处 import _ "github.com/rushteam/shoprec/config/builders"
// 以触发内置 Node（filter.expr、filter.category、rerank.topn 等）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

var (
	registry   = make(map[string]NodeBuilder)
	registryMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，同名覆盖；空类型或 nil builder 被忽略。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型（升序），用于错误提示与 CLI 帮助。
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含当前注册表全部类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range registry {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验所有 node 类型均已注册。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			return fmt.Errorf("node #%d: missing type", i)
		}
		if _, ok := registry[nc.Type]; !ok {
			supported := make([]string, 0, len(registry))
			for t := range registry {
				supported = append(supported, t)
			}
			sort.Strings(supported)
			return fmt.Errorf("node #%d: unsupported type %q (supported: %v)", i, nc.Type, supported)
		}
	}
	return nil
}

// LoadPipeline 读取后处理配置文件，校验后用默认注册表构建 Pipeline。
func LoadPipeline(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", path, err)
	}
	return cfg.BuildPipeline(DefaultFactory())
}
