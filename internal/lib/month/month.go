// Package month содержит календарную арифметику для абонементов:
// прибавление месяцев с поправкой на длину месяца и работу с датами без времени.
package month

import "time"

// DateLayout формат хранения дат абонементов в базе.
const DateLayout = "2006-01-02"

// AddMonths прибавляет к дате n календарных месяцев.
// В отличие от time.AddDate, день не переносится в следующий месяц:
// 31 января + 1 месяц = 28 (29) февраля.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	h, mi, s := t.Clock()
	return time.Date(first.Year(), first.Month(), d, h, mi, s, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Truncate отбрасывает время суток, оставляя дату в той же локации.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Format форматирует дату в DateLayout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Parse разбирает дату в формате DateLayout.
func Parse(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
