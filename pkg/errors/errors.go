package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("record was modified by another request, please retry")

// Kind 业务错误分类，Handler 层据此映射 HTTP 状态码
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindConflict
	KindExport
)

// Error 带分类的业务错误
type Error struct {
	Kind Kind
	Msg  string
}

// New 创建指定分类的业务错误
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

// Is 同分类即视为匹配，errors.Is(err, ErrNotFound) 可命中所有 NotFound 类错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" {
		return e.Kind == t.Kind
	}
	return e == t
}

// ── 分类哨兵（仅用于 errors.Is 判断）──

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrPermission = &Error{Kind: KindPermission}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrExport     = &Error{Kind: KindExport}
)

// KindOf 提取错误分类，非业务错误返回 KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
