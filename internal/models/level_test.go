package models

import (
	"testing"

	"github.com/google/uuid"
)

func floatPtr(v float64) *float64 { return &v }

func testLevels() []FinderLevel {
	return []FinderLevel{
		{ID: uuid.New(), Name: "Novice", MinJobsCompleted: 0, SortOrder: 1, IsActive: true},
		{ID: uuid.New(), Name: "Pathfinder", MinJobsCompleted: 5, MinRating: floatPtr(3.5), SortOrder: 2, IsActive: true},
		{ID: uuid.New(), Name: "Meister", MinJobsCompleted: 10, MinRating: floatPtr(4.5), SortOrder: 3, IsActive: true},
	}
}

func TestEvaluateLevel(t *testing.T) {
	tests := []struct {
		name      string
		jobs      int
		rating    float64
		wantLevel string
	}{
		{"fresh finder gets the floor", 0, 0, "Novice"},
		{"mid tier", 6, 4.0, "Pathfinder"},
		{"top tier", 12, 4.6, "Meister"},
		{"jobs without rating stays mid", 12, 4.0, "Pathfinder"},
		{"rating without jobs stays low", 3, 5.0, "Novice"},
		{"exact thresholds qualify", 10, 4.5, "Meister"},
		{"below every threshold falls to floor", 2, 1.0, "Novice"},
	}

	levels := testLevels()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateLevel(tt.jobs, tt.rating, levels)
			if got == nil {
				t.Fatal("expected a level, got nil")
			}
			if got.Name != tt.wantLevel {
				t.Errorf("EvaluateLevel(%d, %.1f) = %q, want %q", tt.jobs, tt.rating, got.Name, tt.wantLevel)
			}
		})
	}
}

func TestEvaluateLevelSkipsInactive(t *testing.T) {
	levels := testLevels()
	levels[2].IsActive = false

	got := EvaluateLevel(12, 4.6, levels)
	if got == nil || got.Name != "Pathfinder" {
		t.Errorf("expected Pathfinder with Meister inactive, got %v", got)
	}
}

func TestEvaluateLevelNoActiveLevels(t *testing.T) {
	levels := testLevels()
	for i := range levels {
		levels[i].IsActive = false
	}

	if got := EvaluateLevel(12, 4.6, levels); got != nil {
		t.Errorf("expected nil with no active levels, got %v", got)
	}
}

func TestEvaluateLevelFloorEvenWhenFloorHasThresholds(t *testing.T) {
	// A misconfigured floor with thresholds still catches everyone.
	levels := []FinderLevel{
		{ID: uuid.New(), Name: "Gated", MinJobsCompleted: 5, SortOrder: 1, IsActive: true},
		{ID: uuid.New(), Name: "High", MinJobsCompleted: 20, SortOrder: 2, IsActive: true},
	}

	got := EvaluateLevel(0, 0, levels)
	if got == nil || got.Name != "Gated" {
		t.Errorf("expected lowest active level as floor, got %v", got)
	}
}

func TestResolvedMinRating(t *testing.T) {
	tests := []struct {
		name  string
		level FinderLevel
		want  float64
	}{
		{"explicit rating wins", FinderLevel{MinRating: floatPtr(4.5), MinReviewPercentage: floatPtr(50)}, 4.5},
		{"percentage converts to stars", FinderLevel{MinReviewPercentage: floatPtr(90)}, 4.5},
		{"nothing set means zero", FinderLevel{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.ResolvedMinRating(); got != tt.want {
				t.Errorf("ResolvedMinRating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAverageRating(t *testing.T) {
	f := Finder{RatingSum: 14, RatingCount: 3}
	want := float64(14) / 3
	if got := f.AverageRating(); got != want {
		t.Errorf("AverageRating() = %v, want %v", got, want)
	}

	unrated := Finder{}
	if got := unrated.AverageRating(); got != 0 {
		t.Errorf("AverageRating() with no ratings = %v, want 0", got)
	}
}
