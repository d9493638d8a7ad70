package format

import (
	"fmt"
	"strconv"
	"time"
)

type unit struct {
	seconds          int64
	singular, plural string
}

// Месяц - 30 дней, год - 12 таких месяцев (360 дней).
var units = []unit{
	{1, "segundo", "segundos"},
	{60, "minuto", "minutos"},
	{60 * 60, "hora", "horas"},
	{24 * 60 * 60, "dia", "dias"},
	{30 * 24 * 60 * 60, "mês", "meses"},
	{12 * 30 * 24 * 60 * 60, "ano", "anos"},
}

// RelativeTime форматирует разницу между now и past самой крупной единицей с величиной >= 1.
// Будущее время считается как 0 секунд.
func RelativeTime(now, past time.Time) string {
	diff := int64(now.Sub(past) / time.Second)
	if diff < 0 {
		diff = 0
	}

	chosen := units[0]
	for _, u := range units[1:] {
		if diff/u.seconds < 1 {
			break
		}
		chosen = u
	}

	n := diff / chosen.seconds
	label := chosen.plural
	if n == 1 {
		label = chosen.singular
	}
	return fmt.Sprintf("há %d %s", n, label)
}

// Count сокращает большие числа: 1287 -> "1.3k".
func Count(n int64) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return strconv.FormatInt(n, 10)
}

// Minutes форматирует длительность видео в секундах как "N min".
func Minutes(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", seconds/60)
}
