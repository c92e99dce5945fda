package model

import "time"

// ServiceDefinition описывает услугу салона
type ServiceDefinition struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"` // длительность в минутах
	PriceCents      *int64    `json:"price_cents"`      // в копейках/центах, nil если цена не указана
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
