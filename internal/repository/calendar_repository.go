package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarRepository хранит занятые блоки календаря и журнал записей.
// Реализует ledger.Store: блок и запись пишутся одной транзакцией.
// Сериализацию коммитов по датам обеспечивает Booking Ledger,
// репозиторий о ней не знает.
type CalendarRepository struct {
	pool *pgxpool.Pool
}

func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

// TakenRanges возвращает занятые блоки даты по возрастанию старта
func (r *CalendarRepository) TakenRanges(ctx context.Context, date string) ([]model.TimeRange, error) {
	query := `
		SELECT start_minutes, end_minutes
		FROM appointments
		WHERE appointment_date = $1::date
		ORDER BY start_minutes
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get taken ranges: %w", err)
	}
	defer rows.Close()

	var ranges []model.TimeRange
	for rows.Next() {
		var rg model.TimeRange
		if err := rows.Scan(&rg.Start, &rg.End); err != nil {
			return nil, fmt.Errorf("scan taken range: %w", err)
		}
		ranges = append(ranges, rg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate taken ranges: %w", err)
	}

	return ranges, nil
}

// Append вставляет блок в календарь и запись в журнал одной транзакцией
func (r *CalendarRepository) Append(ctx context.Context, block model.TimeRange, booking *model.Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (appointment_date, start_minutes, end_minutes)
		VALUES ($1::date, $2, $3)
	`, booking.Date, block.Start, block.End)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, appointment_date, start_time, end_time,
			service_name, duration_minutes, client_name, client_phone, client_email, created_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		booking.ID,
		booking.Date,
		booking.Start,
		booking.End,
		booking.ServiceName,
		booking.DurationMinutes,
		booking.Client.Name,
		booking.Client.Phone,
		booking.Client.Email,
		booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// BookingsByDate возвращает записи на дату (для /bookings администратора)
func (r *CalendarRepository) BookingsByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	query := `
		SELECT id, appointment_date::text, start_time, end_time,
			service_name, duration_minutes, client_name, client_phone, client_email, created_at
		FROM bookings
		WHERE appointment_date = $1::date
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get bookings by date: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		var b model.Booking
		err := rows.Scan(
			&b.ID,
			&b.Date,
			&b.Start,
			&b.End,
			&b.ServiceName,
			&b.DurationMinutes,
			&b.Client.Name,
			&b.Client.Phone,
			&b.Client.Email,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}
