package models

import "time"

// Membership проданный абонемент: клиент, тариф и период действия.
// PricePaid фиксируется в момент продажи и не зависит от текущей цены тарифа.
// PlanID становится nil после удаления тарифа.
type Membership struct {
	ID        int       `json:"id"`
	ClientID  int       `json:"client_id"`
	PlanID    *int      `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	PricePaid int64     `json:"price_paid"`
}

// DummyMembership запрос на продажу абонемента.
// StartDate в формате 2006-01-02, пустая строка: сегодня.
type DummyMembership struct {
	PlanID    int    `json:"plan_id" validate:"omitempty,gt=0"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty"`
}

// IncomeSummary выручка за период по дате начала абонементов.
type IncomeSummary struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Total int64     `json:"total"`
	Count int       `json:"count"`
}

// ExpiringMembership абонемент, у которого скоро заканчивается срок.
// Используется планировщиком уведомлений.
type ExpiringMembership struct {
	MembershipID int       `json:"membership_id"`
	ClientID     int       `json:"client_id"`
	FullName     string    `json:"full_name"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	PlanName     *string   `json:"plan_name,omitempty"`
	EndDate      time.Time `json:"end_date"`
}
