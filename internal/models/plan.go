package models

// AllowedPlanMonths допустимые длительности тарифа в месяцах.
var AllowedPlanMonths = []int{1, 3, 6, 12}

// ValidPlanMonths проверяет длительность тарифа.
func ValidPlanMonths(months int) bool {
	for _, m := range AllowedPlanMonths {
		if m == months {
			return true
		}
	}
	return false
}

// Plan тариф абонемента. Цена хранится в минимальных денежных единицах.
type Plan struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Months int    `json:"months"`
	Price  int64  `json:"price"`
}

// DummyPlan используется для приёма тарифа из JSON-запроса.
type DummyPlan struct {
	Name   string `json:"name" validate:"required"`
	Months int    `json:"months" validate:"required,oneof=1 3 6 12"`
	Price  int64  `json:"price" validate:"gte=0"`
}
