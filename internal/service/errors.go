package service

import "errors"

// 错误分类：处理器按类别映射HTTP响应，不得吞掉后归并为笼统错误
var (
	// ErrValidation 入参非法（数量≤0、缺少必填引用等），未发生任何写入
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition 当前状态不允许该动作，未发生任何写入
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPartialCommit 主实体已提交但后续级联写失败，需要人工对账而不是盲目重试
	ErrPartialCommit = errors.New("partial commit")
)
