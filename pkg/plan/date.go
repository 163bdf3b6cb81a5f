package plan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
	dateparser "github.com/markusmobius/go-dateparser"
)

// DayWindow is the half-open [Start, End) UTC range a date literal
// expands to (§4.5 item 6 "ON date expands to [start_of_local_day,
// end_of_local_day)").
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// ResolveDateLiteral interprets one of the date forms §4.5 item 6
// allows: ISO dates, dd/mm/yyyy and d-m-yyyy forms, a bare integer day
// offset from now (0 = today, -1 = yesterday), the words "today" /
// "yesterday", or a weekday/month name resolved by fuzzy parsing. now is
// injected so evaluation is deterministic in tests.
func ResolveDateLiteral(raw string, now time.Time) (DayWindow, error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	if lower == "today" {
		return dayWindow(now), nil
	}
	if lower == "yesterday" {
		return dayWindow(now.AddDate(0, 0, -1)), nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return dayWindow(now.AddDate(0, 0, n)), nil
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return dayWindow(t), nil
	}
	if t, ok := parseSlashOrDashDate(raw); ok {
		return dayWindow(t), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, raw)
	if err != nil || result.Time.IsZero() {
		return DayWindow{}, &gn.Error{
			Code: errcode.ParseSyntaxError,
			Msg:  "unrecognized date literal: " + raw,
			Err:  err,
		}
	}
	return dayWindow(result.Time), nil
}

// parseSlashOrDashDate handles "dd/mm/yyyy" and "d-m-yyyy" forms, which
// time.Parse's fixed layout can't disambiguate from ISO without trying
// both separators explicitly.
func parseSlashOrDashDate(raw string) (time.Time, bool) {
	sep := "/"
	if strings.Contains(raw, "-") && !strings.Contains(raw, "/") {
		sep = "-"
	}
	parts := strings.Split(raw, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func dayWindow(t time.Time) DayWindow {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return DayWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// String renders the window for diagnostics/logging.
func (w DayWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
