package views

import (
	"math"
	"strconv"
	"strings"

	"github.com/pribylovaa/go-catalog/internal/models"
)

// DateLayout — формат даты на карточках.
const DateLayout = "Jan 2, 2006"

var compactUnits = []struct {
	div    float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// CompactNumber — короткая запись числа просмотров: 999, 1.2K, 15.3K, 3.4M.
// Не больше одного знака после запятой, ".0" отбрасывается.
func CompactNumber(n int64) string {
	if n < 0 {
		return "-" + CompactNumber(-n)
	}

	v := float64(n)
	for i, u := range compactUnits {
		if v < u.div {
			continue
		}

		s := compactValue(v / u.div)
		// 999_950 → "1000K" → поднимаемся на разряд выше.
		if s == "1000" && i > 0 {
			return "1" + compactUnits[i-1].suffix
		}

		return s + u.suffix
	}

	return strconv.FormatInt(n, 10)
}

func compactValue(x float64) string {
	r := math.Round(x*10) / 10
	return strings.TrimSuffix(strconv.FormatFloat(r, 'f', 1, 64), ".0")
}

// FormatDate — дата создания записи в формате "Jan 2, 2006".
// Нераспознанная дата — пустая строка.
func FormatDate(e models.Entry) string {
	ts := e.CreatedTime()
	if ts.IsZero() {
		return ""
	}

	return ts.Format(DateLayout)
}
