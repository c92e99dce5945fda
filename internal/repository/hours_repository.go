package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HoursRepository читает недельный шаблон рабочих часов и исключения.
// Записью управляет административный слой, ядро только читает.
type HoursRepository struct {
	pool *pgxpool.Pool
}

func NewHoursRepository(pool *pgxpool.Pool) *HoursRepository {
	return &HoursRepository{pool: pool}
}

// WorkingHours собирает полную конфигурацию расписания
func (r *HoursRepository) WorkingHours(ctx context.Context) (*model.WorkingHours, error) {
	weekly, err := r.weeklyHours(ctx)
	if err != nil {
		return nil, err
	}

	exceptions, err := r.exceptions(ctx)
	if err != nil {
		return nil, err
	}

	return &model.WorkingHours{Weekly: weekly, Exceptions: exceptions}, nil
}

func (r *HoursRepository) weeklyHours(ctx context.Context) (model.WeeklyHours, error) {
	query := `
		SELECT weekday, start_minutes, end_minutes
		FROM weekly_hours
		ORDER BY weekday, start_minutes
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get weekly hours: %w", err)
	}
	defer rows.Close()

	weekly := make(model.WeeklyHours)
	for rows.Next() {
		var weekday int
		var rg model.TimeRange
		if err := rows.Scan(&weekday, &rg.Start, &rg.End); err != nil {
			return nil, fmt.Errorf("scan weekly hours: %w", err)
		}
		wd := time.Weekday(weekday)
		weekly[wd] = append(weekly[wd], rg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekly hours: %w", err)
	}

	return weekly, nil
}

func (r *HoursRepository) exceptions(ctx context.Context) (map[string][]model.TimeRange, error) {
	// Строка с NULL-интервалом означает "салон закрыт в эту дату":
	// дата присутствует в карте с пустым списком
	query := `
		SELECT exception_date, start_minutes, end_minutes
		FROM schedule_exceptions
		ORDER BY exception_date, start_minutes NULLS FIRST
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get schedule exceptions: %w", err)
	}
	defer rows.Close()

	exceptions := make(map[string][]model.TimeRange)
	for rows.Next() {
		var date time.Time
		var start, end *int
		if err := rows.Scan(&date, &start, &end); err != nil {
			return nil, fmt.Errorf("scan schedule exception: %w", err)
		}

		key := date.Format(timegrid.DateLayout)
		if _, ok := exceptions[key]; !ok {
			exceptions[key] = []model.TimeRange{}
		}
		if start != nil && end != nil {
			exceptions[key] = append(exceptions[key], model.TimeRange{Start: *start, End: *end})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule exceptions: %w", err)
	}

	return exceptions, nil
}
