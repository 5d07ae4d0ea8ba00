package model

import "time"

// BusinessHour is the working window for one day of the week.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type BusinessHour struct {
	ID        int64     `json:"id,omitempty"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"` // HH:MM, zero-padded
	EndTime   string    `json:"end_time"`   // HH:MM, zero-padded
	IsActive  bool      `json:"is_active"`
	Timezone  string    `json:"timezone,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Holiday marks a calendar date as closed, unless IsWorkingDay overrides it.
type Holiday struct {
	ID           int64     `json:"id,omitempty"`
	Date         time.Time `json:"date"` // date component only
	Name         string    `json:"name"`
	IsWorkingDay bool      `json:"is_working_day"`
}

// ScheduleConfig is a point-in-time snapshot of the availability
// configuration. It is rebuilt from the store and cached by the resolver.
type ScheduleConfig struct {
	BusinessHours   []BusinessHour `json:"business_hours"`
	Holidays        []Holiday      `json:"holidays"`
	DefaultTimezone string         `json:"default_timezone"`
	AllowWeekend    bool           `json:"allow_weekend"`
	BufferBefore    time.Duration  `json:"buffer_minutes_before"`
	BufferAfter     time.Duration  `json:"buffer_minutes_after"`
}

// HourForDay returns the entry for the given weekday, if configured.
func (c *ScheduleConfig) HourForDay(day time.Weekday) (BusinessHour, bool) {
	for _, h := range c.BusinessHours {
		if h.DayOfWeek == int(day) {
			return h, true
		}
	}
	return BusinessHour{}, false
}

// HolidayOn returns the holiday entry matching the date component of t.
func (c *ScheduleConfig) HolidayOn(t time.Time) (Holiday, bool) {
	y, m, d := t.Date()
	for _, h := range c.Holidays {
		hy, hm, hd := h.Date.Date()
		if hy == y && hm == m && hd == d {
			return h, true
		}
	}
	return Holiday{}, false
}
