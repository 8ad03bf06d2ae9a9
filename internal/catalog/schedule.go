package catalog

import (
	"fmt"
	"strings"
	"time"

	"workshop-order-bot/internal/pkg/config"
)

var dayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

var dayNames = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

// Schedule is the fixed weekly timetable in the workshop's time zone.
type Schedule struct {
	hours [7]string
	loc   *time.Location
}

func NewSchedule(cfg *config.WorkshopCfg) *Schedule {
	s := &Schedule{loc: cfg.Location()}
	for day, key := range dayKeys {
		s.hours[day] = strings.TrimSpace(cfg.Schedule[key])
	}
	return s
}

func (s *Schedule) Location() *time.Location {
	return s.loc
}

// Hours returns the opening hours of the workshop-local day containing t.
func (s *Schedule) Hours(t time.Time) (string, bool) {
	hours := s.hours[t.In(s.loc).Weekday()]
	return hours, hours != ""
}

func (s *Schedule) IsWorkday(t time.Time) bool {
	_, ok := s.Hours(t)
	return ok
}

// Summary groups consecutive days with equal hours: "Пн-Чт: 10:00-19:50, Пт: 10:00-19:00, Вс: выходной".
func (s *Schedule) Summary() string {
	week := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}

	var parts []string
	for i := 0; i < len(week); {
		j := i
		for j+1 < len(week) && s.hours[week[j+1]] == s.hours[week[i]] {
			j++
		}
		days := dayNames[week[i]]
		if j > i {
			days += "-" + dayNames[week[j]]
		}
		hours := s.hours[week[i]]
		if hours == "" {
			hours = "выходной"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", days, hours))
		i = j + 1
	}
	return strings.Join(parts, ", ")
}
