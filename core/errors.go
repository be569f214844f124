package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有可恢复的业务错误都使用此类型，调用方据此重新选择/重新输入
//   - 错误永远通过 error 返回，不会混入推荐结果列表
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Catalog：NOT_FOUND, EMPTY_CATALOG, INVALID_INPUT
//   - Rating：INVALID_RATING, EMPTY_RATING_STORE
//   - Recall：NOT_FOUND（未知物品/用户）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_RATING"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "rating", "recall"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 允许 errors.Is 按 Module + Code 比较，便于与预定义错误变量匹配。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 物品或用户不存在
	ErrorCodeInvalidRating    = "INVALID_RATING"     // 评分超出有效范围
	ErrorCodeEmptyCatalog     = "EMPTY_CATALOG"      // 物品目录为空
	ErrorCodeEmptyRatingStore = "EMPTY_RATING_STORE" // 评分数据为空
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效（重复 ID 等）
)

// 模块名称常量
const (
	ModuleCatalog = "catalog" // 物品目录
	ModuleRating  = "rating"  // 评分存储
	ModuleRecall  = "recall"  // 相似度引擎
	ModuleStore   = "store"   // KV 存储
	ModuleService = "service" // 推荐服务
)

// NotFound 构造 NOT_FOUND 错误，kind 为 "item" / "user" 等。
func NotFound(module, kind, id string) *DomainError {
	return NewDomainError(module, ErrorCodeNotFound, fmt.Sprintf("%s: %s %q not found", module, kind, id))
}

// InvalidRating 构造 INVALID_RATING 错误。
func InvalidRating(score, min, max float64) *DomainError {
	return NewDomainError(ModuleRating, ErrorCodeInvalidRating,
		fmt.Sprintf("rating: score %g outside valid range [%g, %g]", score, min, max))
}

var (
	// ErrEmptyCatalog 表示在零条物品记录上构建目录
	ErrEmptyCatalog = NewDomainError(ModuleCatalog, ErrorCodeEmptyCatalog, "catalog: no items to index")

	// ErrEmptyRatingStore 表示在零条评分记录上构建矩阵
	ErrEmptyRatingStore = NewDomainError(ModuleRating, ErrorCodeEmptyRatingStore, "rating: no ratings to build matrix")
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsInvalidRating 检查错误是否为 INVALID_RATING
func IsInvalidRating(err error) bool { return hasCode(err, ErrorCodeInvalidRating) }

// IsEmptyCatalog 检查错误是否为 EMPTY_CATALOG
func IsEmptyCatalog(err error) bool { return hasCode(err, ErrorCodeEmptyCatalog) }

// IsEmptyRatingStore 检查错误是否为 EMPTY_RATING_STORE
func IsEmptyRatingStore(err error) bool { return hasCode(err, ErrorCodeEmptyRatingStore) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }
