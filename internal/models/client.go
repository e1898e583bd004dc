// Package models содержит доменные структуры спортзала: клиентов, тарифы,
// абонементы и посещения, а также типы для приёма данных из JSON-запросов.
package models

import "time"

// Role роль человека в зале.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleClient Role = "client"
	RoleCoach  Role = "coach"
)

// Valid проверяет, что роль входит в допустимый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleClient, RoleCoach:
		return true
	}
	return false
}

// Client представляет карточку человека, посещающего зал.
type Client struct {
	ID          int       `json:"id"`
	FullName    string    `json:"full_name"`
	IDCard      int64     `json:"id_card"`                // Номер удостоверения, уникален
	PhoneNumber *string   `json:"phone_number,omitempty"` // nil, если телефон не указан
	Role        Role      `json:"role"`
	Picture     *string   `json:"picture,omitempty"` // Путь к текущей фотографии
	CreatedAt   time.Time `json:"created_at"`
}

// DummyClient используется для приёма данных нового клиента из JSON-запроса.
// PicturePath указывает на локальный файл (выбранный вручную или снятый телефоном).
type DummyClient struct {
	FullName    string `json:"full_name" validate:"required"`
	IDCard      int64  `json:"id_card" validate:"required,gt=0"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,numeric"`
	PicturePath string `json:"picture_path" validate:"required"`
}

// DummyClientUpdate используется для редактирования клиента.
// Пустой PicturePath означает, что фотография не меняется.
type DummyClientUpdate struct {
	FullName    string `json:"full_name" validate:"required"`
	IDCard      int64  `json:"id_card" validate:"required,gt=0"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,numeric"`
	PicturePath string `json:"picture_path,omitempty" validate:"omitempty"`
}

// DummyRole запрос на смену роли.
type DummyRole struct {
	Role string `json:"role" validate:"required,oneof=owner client coach"`
}

// ClientFilter параметры поиска в списке клиентов.
type ClientFilter struct {
	Field    string // Колонка поиска: id, full_name, id_card, phone_number, role, created_at
	Query    string // Текст поиска, пустой: без фильтра
	SortBy   string // Колонка сортировки, по умолчанию id
	SortDesc bool
}

// Статусы доступа в зал.
const (
	StatusAllowed    = "allowed"
	StatusNotAllowed = "not allowed"
)

// AccessStatus результат вычисления доступа клиента в зал на текущую дату.
type AccessStatus struct {
	ClientID  int        `json:"client_id"`
	Allowed   bool       `json:"allowed"`
	Status    string     `json:"status"`
	LatestEnd *time.Time `json:"latest_end,omitempty"`
}
