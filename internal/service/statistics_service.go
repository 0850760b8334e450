package service

import (
	"context"
	"sort"

	"github.com/example/reqdesk/backend/internal/repository"
)

// CategoryCompletionStat is the average time from submission to completion
// for one category.
type CategoryCompletionStat struct {
	CategoryID     uint    `json:"category_id"`
	CategoryName   string  `json:"category_name"`
	AverageSeconds float64 `json:"average_seconds"`
	CompletedCount int     `json:"completed_count"`
}

// StatisticsService aggregates completion metrics for the admin dashboard.
type StatisticsService struct {
	requests *repository.RequestRepository
}

// NewStatisticsService builds a service with dependencies.
func NewStatisticsService(requests *repository.RequestRepository) *StatisticsService {
	return &StatisticsService{requests: requests}
}

// AverageCompletionTimes computes the per-category mean of
// request_finish_time - request_date over completed requests. Aggregation
// happens here rather than in SQL so it behaves identically on every
// backing store.
func (s *StatisticsService) AverageCompletionTimes(ctx context.Context) ([]CategoryCompletionStat, error) {
	rows, err := s.requests.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uint]*CategoryCompletionStat)
	totals := make(map[uint]float64)
	for _, row := range rows {
		stat, ok := byCategory[row.CategoryID]
		if !ok {
			stat = &CategoryCompletionStat{CategoryID: row.CategoryID, CategoryName: row.CategoryName}
			byCategory[row.CategoryID] = stat
		}
		stat.CompletedCount++
		totals[row.CategoryID] += row.RequestFinishTime.Sub(row.RequestDate).Seconds()
	}

	out := make([]CategoryCompletionStat, 0, len(byCategory))
	for id, stat := range byCategory {
		stat.AverageSeconds = totals[id] / float64(stat.CompletedCount)
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}
