package model

import "time"

// Client контактные данные клиента
type Client struct {
	Name  string `json:"name"`
	Phone string `json:"phone"` // E.164
	Email string `json:"email"`
}

// Booking подтверждённая запись. Создаётся только успешным коммитом
// в Booking Ledger и после этого не изменяется.
type Booking struct {
	ID              string    `json:"id"`
	Date            string    `json:"date"`  // "YYYY-MM-DD"
	Start           string    `json:"start"` // "HH:MM"
	End             string    `json:"end"`   // "HH:MM"
	ServiceName     string    `json:"service_name"`
	DurationMinutes int       `json:"duration_minutes"`
	Client          Client    `json:"client"`
	CreatedAt       time.Time `json:"created_at"`
}
