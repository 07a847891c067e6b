// Package clock определяет источник текущего времени для движка резолюции.
//
// Все вычисления "активна ли покупка" и "сколько дней осталось" делаются
// от одного значения now на весь запрос, поэтому часы передаются зависимостью,
// а не берутся из time.Now внутри алгоритмов.
package clock

import "time"

// Clock возвращает текущее время. В продакшене — системные часы,
// в тестах — фиксированное значение.
type Clock interface {
	Now() time.Time
}

// System реализует Clock поверх системных часов.
type System struct{}

// Now возвращает текущее время в UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed реализует Clock с неизменным значением времени.
type Fixed struct {
	Time time.Time
}

// Now возвращает зафиксированное время.
func (f Fixed) Now() time.Time {
	return f.Time
}
