package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// Services возвращает все активные услуги
func (r *ServiceRepository) Services(ctx context.Context) ([]*model.ServiceDefinition, error) {
	query := `
		SELECT id, name, description, duration_minutes, price_cents, is_active, created_at
		FROM services
		WHERE is_active = true
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	defer rows.Close()

	var services []*model.ServiceDefinition
	for rows.Next() {
		var svc model.ServiceDefinition
		err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Description,
			&svc.DurationMinutes,
			&svc.PriceCents,
			&svc.IsActive,
			&svc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, &svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

// ServiceByName ищет услугу по имени без учёта регистра.
// Возвращает nil, если услуги нет.
func (r *ServiceRepository) ServiceByName(ctx context.Context, name string) (*model.ServiceDefinition, error) {
	query := `
		SELECT id, name, description, duration_minutes, price_cents, is_active, created_at
		FROM services
		WHERE lower(name) = lower(trim($1))
	`

	var svc model.ServiceDefinition
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.DurationMinutes,
		&svc.PriceCents,
		&svc.IsActive,
		&svc.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get service by name: %w", err)
	}

	return &svc, nil
}
