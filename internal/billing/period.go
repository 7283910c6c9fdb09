package billing

import (
	"fmt"
	"time"
)

const periodKeyLayout = "2006-01"

// Period идентифицирует расчётный период по календарному месяцу.
// Ключ периода используется как общий ярлык и для планов, не являющихся месячными.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf возвращает период, которому принадлежит момент t (в UTC).
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod разбирает ключ периода в формате YYYY-MM.
func ParsePeriod(key string) (Period, error) {
	t, err := time.Parse(periodKeyLayout, key)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", key, err)
	}
	return PeriodOf(t), nil
}

// IsZero сообщает, что период не задан.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start возвращает первый день периода.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths сдвигает период на n календарных месяцев.
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Start().AddDate(0, n, 0))
}

// Next возвращает следующий период.
func (p Period) Next() Period {
	return p.AddMonths(1)
}

// Before сообщает, что p раньше other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// After сообщает, что p позже other.
func (p Period) After(other Period) bool {
	return other.Before(p)
}

// Day отбрасывает время суток и приводит момент к UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween возвращает число полных дней от from до to; отрицательно, если to раньше from.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// ElapsedPeriods возвращает число начатых периодов длиной periodDays между start и end.
// Если end раньше start или совпадает с ним, периодов нет.
func ElapsedPeriods(start, end time.Time, periodDays int) int {
	if periodDays <= 0 {
		return 0
	}
	days := DaysBetween(start, end)
	if days <= 0 {
		return 0
	}
	return (days + periodDays - 1) / periodDays
}

// PeriodLabel содержит ярлыки периода в единственном и множественном числе.
type PeriodLabel struct {
	Singular string
	Plural   string
}

// For возвращает ярлык, согласованный с количеством n.
func (l PeriodLabel) For(n int) string {
	if n == 1 {
		return l.Singular
	}
	return l.Plural
}

// GenericPeriodLabel применяется к длинам периода, отсутствующим в PeriodLabels.
var GenericPeriodLabel = PeriodLabel{Singular: "período", Plural: "períodos"}

// PeriodLabels сопоставляет длину периода в днях с его названием.
var PeriodLabels = map[int]PeriodLabel{
	7:   {Singular: "semana", Plural: "semanas"},
	30:  {Singular: "mes", Plural: "meses"},
	365: {Singular: "año", Plural: "años"},
}

// LabelFor возвращает ярлык периода для плана с длиной периода periodDays.
func LabelFor(periodDays int) PeriodLabel {
	if l, ok := PeriodLabels[periodDays]; ok {
		return l
	}
	return GenericPeriodLabel
}
