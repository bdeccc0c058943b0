package domain

import "errors"

// 核心错误类型，transport层负责映射到HTTP状态码
var (
	// ErrNotFound 按id查询的实体不存在（或属于其他用户，两者对外不区分）
	ErrNotFound = errors.New("not found")

	// ErrNotOwned 引用的tag/subtag/tag_type不属于当前用户，
	// 或subtag不属于指定的tag
	ErrNotOwned = errors.New("referenced entity not owned by user")

	// ErrAlreadyClosed activity的end已设置，不能重复关闭
	ErrAlreadyClosed = errors.New("activity is already closed")

	// ErrInvalidRange 时间范围非法（end <= start，或weekly范围不足一整周）
	ErrInvalidRange = errors.New("invalid time range")
)
