package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"zero", 0, "há 0 segundos"},
		{"one second", time.Second, "há 1 segundo"},
		{"seconds", 59 * time.Second, "há 59 segundos"},
		{"ninety seconds floor to a minute", 90 * time.Second, "há 1 minuto"},
		{"minutes", 59 * time.Minute, "há 59 minutos"},
		{"one hour", time.Hour, "há 1 hora"},
		{"hours", 23 * time.Hour, "há 23 horas"},
		{"twenty five hours", 25 * time.Hour, "há 1 dia"},
		{"days", 29 * day, "há 29 dias"},
		{"one month", 30 * day, "há 1 mês"},
		{"months", 359 * day, "há 11 meses"},
		{"one year", 360 * day, "há 1 ano"},
		{"years", 725 * day, "há 2 anos"},
		{"future clamps", -time.Minute, "há 0 segundos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now, now.Add(-tt.ago)))
		})
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "1.0k", Count(1000))
	assert.Equal(t, "1.3k", Count(1287))
	assert.Equal(t, "342", Count(342))
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, "", Minutes(0))
	assert.Equal(t, "42 min", Minutes(42*60+18))
	assert.Equal(t, "0 min", Minutes(30))
}
