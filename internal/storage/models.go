package storage

import "time"

// Well-known preference keys.
const (
	KeyTheme = "theme"
)

type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
