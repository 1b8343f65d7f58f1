package models

import "time"

type Event struct {
	Lifecycle
	CampusID    int       `json:"campus_id"`
	LabID       *int      `json:"lab_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Organizer   string    `json:"organizer"`
}
