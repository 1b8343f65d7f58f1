package models

type Lab struct {
	Lifecycle
	CampusID    int    `json:"campus_id"`
	Name        string `json:"name"`
	RoomNumber  string `json:"room_number"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`
}
