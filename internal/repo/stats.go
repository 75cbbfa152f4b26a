package repo

import (
	"Chest/internal/model"
	"context"

	"gorm.io/gorm"
)

// StatsRepository считает агрегаты по всем владельцам.
type StatsRepository interface {
	Global(ctx context.Context) (*model.GlobalStats, error)
}

type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepository создаёт реализацию StatsRepository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

type statsRow struct {
	TotalEvents  int64
	TotalUsers   int64
	AvgIntensity *float64
	NightEvents  int64
}

func (r *statsRepo) Global(ctx context.Context) (*model.GlobalStats, error) {
	var row statsRow
	err := conn(ctx, r.db).
		Model(&model.Event{}).
		Select(`COUNT(*) AS total_events,
			COUNT(DISTINCT owner_id) AS total_users,
			AVG(intensity) AS avg_intensity,
			COALESCE(SUM(CASE WHEN time_of_day = ? THEN 1 ELSE 0 END), 0) AS night_events`,
			model.TimeOfDayNight).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	s := &model.GlobalStats{
		TotalEvents: row.TotalEvents,
		TotalUsers:  row.TotalUsers,
	}
	if row.AvgIntensity != nil {
		s.AverageIntensity = *row.AvgIntensity
	}
	if row.TotalEvents > 0 {
		s.NightShare = float64(row.NightEvents) / float64(row.TotalEvents)
	}
	return s, nil
}
