package service

import "github.com/hardhat/sitebase/internal/entity"

// ProgressItem 进度汇总输入项
type ProgressItem struct {
	Progress float64
	Weight   *float64
}

// WeightedProgress 子节点进度加权汇总为父节点进度。
// 全部无权重时取算术平均；任一项带权重时按权重归一化求和（缺省权重按0计）；
// 权重和为0时退回算术平均，避免除零。
func WeightedProgress(items []ProgressItem) float64 {
	if len(items) == 0 {
		return 0
	}

	var weightSum float64
	hasWeight := false
	for _, it := range items {
		if it.Weight != nil {
			hasWeight = true
			weightSum += *it.Weight
		}
	}

	if !hasWeight || weightSum == 0 {
		var sum float64
		for _, it := range items {
			sum += it.Progress
		}
		return sum / float64(len(items))
	}

	var weighted float64
	for _, it := range items {
		if it.Weight == nil {
			continue
		}
		weighted += it.Progress * *it.Weight / weightSum
	}
	return weighted
}

// ProgressStatus 由进度值推导状态
func ProgressStatus(progress float64) string {
	switch {
	case progress >= 100:
		return entity.ProgressStatusCompleted
	case progress > 0:
		return entity.ProgressStatusInProgress
	default:
		return entity.ProgressStatusPending
	}
}
