package models

// Club клуб сети. Не изменяется после создания.
type Club struct {
	ClubID string `json:"club_id"`
	Name   string `json:"name"`
}

// Class занятие, которое проводится в клубе ClubID.
type Class struct {
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
	ClubID  string `json:"club_id"`
}
