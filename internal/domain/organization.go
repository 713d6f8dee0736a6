package domain

import "time"

// Building is a physical site. Cases are placed against a building, either
// explicitly or via the reporter's department.
type Building struct {
	ID         string
	Name       string
	ProvinceID string
	CreatedAt  time.Time
}
