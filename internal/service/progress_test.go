package service

import (
	"math"
	"testing"

	"github.com/hardhat/sitebase/internal/entity"
)

func fp(v float64) *float64 { return &v }

func TestWeightedProgressNoWeights(t *testing.T) {
	// All weights nil: arithmetic mean
	got := WeightedProgress([]ProgressItem{
		{Progress: 100},
		{Progress: 50},
		{Progress: 0},
	})
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("Expected mean 50, got %v", got)
	}
}

func TestWeightedProgressWithWeights(t *testing.T) {
	// 100*0.6 + 25*0.4 = 70
	got := WeightedProgress([]ProgressItem{
		{Progress: 100, Weight: fp(0.6)},
		{Progress: 25, Weight: fp(0.4)},
	})
	if math.Abs(got-70) > 1e-9 {
		t.Errorf("Expected 70, got %v", got)
	}
}

func TestWeightedProgressUnnormalizedWeights(t *testing.T) {
	// Weights 3 and 1 normalize to 0.75/0.25: 80*0.75 + 40*0.25 = 70
	got := WeightedProgress([]ProgressItem{
		{Progress: 80, Weight: fp(3)},
		{Progress: 40, Weight: fp(1)},
	})
	if math.Abs(got-70) > 1e-9 {
		t.Errorf("Expected 70, got %v", got)
	}
}

func TestWeightedProgressMissingWeightCountsZero(t *testing.T) {
	// Item without weight contributes nothing once any weight is present
	got := WeightedProgress([]ProgressItem{
		{Progress: 100, Weight: fp(1)},
		{Progress: 100},
	})
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("Expected 100, got %v", got)
	}
}

func TestWeightedProgressZeroWeightSumFallsBackToMean(t *testing.T) {
	got := WeightedProgress([]ProgressItem{
		{Progress: 60, Weight: fp(0)},
		{Progress: 20, Weight: fp(0)},
	})
	if math.Abs(got-40) > 1e-9 {
		t.Errorf("Expected mean 40, got %v", got)
	}
}

func TestWeightedProgressEmpty(t *testing.T) {
	if got := WeightedProgress(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
}

func TestProgressStatus(t *testing.T) {
	cases := []struct {
		progress float64
		want     string
	}{
		{0, entity.ProgressStatusPending},
		{0.01, entity.ProgressStatusInProgress},
		{99.99, entity.ProgressStatusInProgress},
		{100, entity.ProgressStatusCompleted},
		{120, entity.ProgressStatusCompleted},
	}
	for _, c := range cases {
		if got := ProgressStatus(c.progress); got != c.want {
			t.Errorf("ProgressStatus(%v) = %s, want %s", c.progress, got, c.want)
		}
	}
}
