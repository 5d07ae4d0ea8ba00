// Package schedule resolves business-hours availability for the virtual
// agent: whether a moment falls inside the working window, and when the
// next attendable slot opens.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// Store is the persistence subset the resolver needs.
type Store interface {
	ActiveBusinessHours(ctx context.Context) ([]model.BusinessHour, error)
	FutureHolidays(ctx context.Context, from time.Time) ([]model.Holiday, error)
	UpsertBusinessHours(ctx context.Context, h model.BusinessHour) error
	UpsertHoliday(ctx context.Context, h model.Holiday) error
	DeleteHoliday(ctx context.Context, date time.Time) error
}

const (
	// configTTL is how long a loaded schedule snapshot stays fresh.
	configTTL = 5 * time.Minute
	// scanLimitDays bounds the next-slot search before falling back.
	scanLimitDays = 30
	// rolloverHour is the time-of-day a next-slot scan resumes at after
	// crossing midnight.
	rolloverHour = 9
	// defaultBuffer pads slot suggestions away from window edges.
	defaultBuffer = 15 * time.Minute
)

// Resolver answers availability queries over a cached schedule snapshot.
// Mutations write through the store and invalidate the cache, so they are
// visible on the next read. Safe for concurrent use.
type Resolver struct {
	store Store
	cache cached[model.ScheduleConfig]

	now func() time.Time
}

// NewResolver creates a Resolver over the given store.
func NewResolver(s Store) *Resolver {
	return &Resolver{store: s, now: time.Now}
}

// Config returns the current schedule snapshot, loading from the store at
// most once per TTL. A store with no configured hours falls back to the
// default Brazilian business week.
func (r *Resolver) Config(ctx context.Context) (model.ScheduleConfig, error) {
	now := r.now()
	if cfg, ok := r.cache.get(now); ok {
		return cfg, nil
	}

	hours, err := r.store.ActiveBusinessHours(ctx)
	if err != nil {
		return model.ScheduleConfig{}, eris.Wrap(err, "schedule: load business hours")
	}
	holidays, err := r.store.FutureHolidays(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		return model.ScheduleConfig{}, eris.Wrap(err, "schedule: load holidays")
	}

	if len(hours) == 0 {
		zap.L().Warn("no business hours configured, using defaults")
		hours = DefaultBusinessHours()
	}

	cfg := model.ScheduleConfig{
		BusinessHours:   hours,
		Holidays:        holidays,
		DefaultTimezone: "America/Sao_Paulo",
		AllowWeekend:    true,
		BufferBefore:    defaultBuffer,
		BufferAfter:     defaultBuffer,
	}
	r.cache.put(cfg, now.Add(configTTL))
	return cfg, nil
}

// Invalidate drops the cached snapshot.
func (r *Resolver) Invalidate() {
	r.cache.Invalidate()
}

// IsBusinessHours reports whether t falls inside the working window:
// not a (non-working) holiday, the weekday has an active entry, and the
// time of day is within [start, end], end inclusive.
func (r *Resolver) IsBusinessHours(ctx context.Context, t time.Time) (bool, error) {
	cfg, err := r.Config(ctx)
	if err != nil {
		return false, err
	}
	return isOpen(cfg, t), nil
}

// NextAvailableSlot returns the earliest attendable moment at or after
// from, padded by the configured buffer. The scan is bounded; if no open
// window is found it falls back to the next Monday at 09:00.
func (r *Resolver) NextAvailableSlot(ctx context.Context, from time.Time) (time.Time, error) {
	cfg, err := r.Config(ctx)
	if err != nil {
		return time.Time{}, err
	}

	candidate := from.Add(cfg.BufferBefore)
	deadline := from.AddDate(0, 0, scanLimitDays)

	for candidate.Before(deadline) {
		if isOpen(cfg, candidate) {
			return candidate, nil
		}

		if hour, ok := dayWindow(cfg, candidate); ok {
			start, _ := ParseClock(hour.StartTime)
			if minuteOfDay(candidate) < start {
				candidate = atMinute(candidate, start)
				continue
			}
		}
		// Past today's window (or the day is closed): resume tomorrow
		// morning.
		candidate = atMinute(candidate.AddDate(0, 0, 1), rolloverHour*60)
	}

	return nextMonday(from), nil
}

// UpdateBusinessHours sets the working window for one weekday. The window
// must be well-formed HH:MM with start before end.
func (r *Resolver) UpdateBusinessHours(ctx context.Context, day time.Weekday, start, end string) error {
	if day < time.Sunday || day > time.Saturday {
		return eris.Errorf("schedule: invalid day of week %d", day)
	}
	startMin, err := ParseClock(start)
	if err != nil {
		return err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return err
	}
	if startMin >= endMin {
		return eris.Errorf("schedule: window %s-%s is empty", start, end)
	}

	err = r.store.UpsertBusinessHours(ctx, model.BusinessHour{
		DayOfWeek: int(day),
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	})
	if err != nil {
		return eris.Wrap(err, "schedule: update business hours")
	}
	r.cache.Invalidate()
	return nil
}

// AddHoliday registers a holiday on the given date. A working holiday is
// recorded but does not close the schedule.
func (r *Resolver) AddHoliday(ctx context.Context, date time.Time, name string, working bool) error {
	if name == "" {
		return eris.New("schedule: holiday name required")
	}
	err := r.store.UpsertHoliday(ctx, model.Holiday{
		Date:         date,
		Name:         name,
		IsWorkingDay: working,
	})
	if err != nil {
		return eris.Wrap(err, "schedule: add holiday")
	}
	r.cache.Invalidate()
	return nil
}

// RemoveHoliday deletes the holiday on the given date.
func (r *Resolver) RemoveHoliday(ctx context.Context, date time.Time) error {
	if err := r.store.DeleteHoliday(ctx, date); err != nil {
		return eris.Wrap(err, "schedule: remove holiday")
	}
	r.cache.Invalidate()
	return nil
}

// AvailabilityText renders the weekly hours and upcoming holidays as the
// customer-facing message used by the bot.
func (r *Resolver) AvailabilityText(ctx context.Context) (string, error) {
	cfg, err := r.Config(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Nosso horário de atendimento:\n")
	for day := time.Sunday; day <= time.Saturday; day++ {
		hour, ok := cfg.HourForDay(day)
		if !ok || !hour.IsActive {
			continue
		}
		fmt.Fprintf(&b, "%s: %s às %s\n", dayNamesPT[day], hour.StartTime, hour.EndTime)
	}

	upcoming := 0
	for _, h := range cfg.Holidays {
		if h.IsWorkingDay {
			continue
		}
		if upcoming == 0 {
			b.WriteString("\nPróximos feriados:\n")
		}
		fmt.Fprintf(&b, "%s - %s\n", h.Date.Format("02/01"), h.Name)
		upcoming++
		if upcoming == 5 {
			break
		}
	}
	return b.String(), nil
}

var dayNamesPT = map[time.Weekday]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
}

// DefaultBusinessHours is the seed schedule: weekdays 09:00-18:00 and
// Saturday mornings.
func DefaultBusinessHours() []model.BusinessHour {
	hours := make([]model.BusinessHour, 0, 6)
	for day := time.Monday; day <= time.Friday; day++ {
		hours = append(hours, model.BusinessHour{
			DayOfWeek: int(day), StartTime: "09:00", EndTime: "18:00", IsActive: true,
		})
	}
	hours = append(hours, model.BusinessHour{
		DayOfWeek: int(time.Saturday), StartTime: "09:00", EndTime: "13:00", IsActive: true,
	})
	return hours
}

// isOpen evaluates the window test against a loaded snapshot.
func isOpen(cfg model.ScheduleConfig, t time.Time) bool {
	if h, ok := cfg.HolidayOn(t); ok && !h.IsWorkingDay {
		return false
	}
	wd := t.Weekday()
	if !cfg.AllowWeekend && (wd == time.Saturday || wd == time.Sunday) {
		return false
	}
	hour, ok := dayWindow(cfg, t)
	if !ok {
		return false
	}
	start, err := ParseClock(hour.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseClock(hour.EndTime)
	if err != nil {
		return false
	}
	m := minuteOfDay(t)
	return m >= start && m <= end
}

// dayWindow returns the active entry for t's weekday.
func dayWindow(cfg model.ScheduleConfig, t time.Time) (model.BusinessHour, bool) {
	hour, ok := cfg.HourForDay(t.Weekday())
	if !ok || !hour.IsActive {
		return model.BusinessHour{}, false
	}
	return hour, true
}

// atMinute returns t's date at the given minute-of-day.
func atMinute(t time.Time, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), minute/60, minute%60, 0, 0, t.Location())
}

// nextMonday returns the Monday after t at 09:00.
func nextMonday(t time.Time) time.Time {
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return atMinute(t.AddDate(0, 0, days), rolloverHour*60)
}
