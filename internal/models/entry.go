package models

import "time"

// DeletedClientName подставляется вместо имени, если клиент удалён.
const DeletedClientName = "(deleted)"

// Entry запись о посещении зала. Записи только добавляются.
// ClientID сохраняется даже после удаления клиента.
type Entry struct {
	ID         int       `json:"id"`
	Date       time.Time `json:"date"`
	ClientID   int       `json:"client_id"`
	ClientName string    `json:"client_name"`
}

// EligibleClient клиент, которому сегодня разрешён вход.
type EligibleClient struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

// DummyEntry запрос на регистрацию посещения.
type DummyEntry struct {
	ClientID int `json:"client_id" validate:"required,gt=0"`
}
