package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Holiday is a single observed public holiday.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

type rule struct {
	name string
	// fixed-date rules pin month and day; moveable rules are expressed as
	// a day offset from Easter Sunday.
	month    time.Month
	day      int
	offset   int
	moveable bool
}

func fixed(name string, month time.Month, day int) rule {
	return rule{name: name, month: month, day: day}
}

func easterOffset(name string, offset int) rule {
	return rule{name: name, offset: offset, moveable: true}
}

// RuleSet is the holiday table observed in one region.
type RuleSet struct {
	Region string
	rules  []rule
}

const DefaultRegion = "NW"

// regionRules keys rule sets by region code. The default set matches the
// observances the planner has always used, including the regional feasts
// Fronleichnam and Allerheiligen.
var regionRules = map[string][]rule{
	"NW": {
		fixed("Neujahr", time.January, 1),
		easterOffset("Karfreitag", -2),
		easterOffset("Ostermontag", 1),
		fixed("Tag der Arbeit", time.May, 1),
		easterOffset("Christi Himmelfahrt", 39),
		easterOffset("Pfingstmontag", 50),
		easterOffset("Fronleichnam", 60),
		fixed("Tag der Dt. Einheit", time.October, 3),
		fixed("Allerheiligen", time.November, 1),
		fixed("1. Weihnachtstag", time.December, 25),
		fixed("2. Weihnachtstag", time.December, 26),
	},
	"DE": {
		fixed("Neujahr", time.January, 1),
		easterOffset("Karfreitag", -2),
		easterOffset("Ostermontag", 1),
		fixed("Tag der Arbeit", time.May, 1),
		easterOffset("Christi Himmelfahrt", 39),
		easterOffset("Pfingstmontag", 50),
		fixed("Tag der Dt. Einheit", time.October, 3),
		fixed("1. Weihnachtstag", time.December, 25),
		fixed("2. Weihnachtstag", time.December, 26),
	},
}

// Regions lists the known region codes, sorted.
func Regions() []string {
	out := make([]string, 0, len(regionRules))
	for code := range regionRules {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Calendar answers holiday and weekend questions for one region's rule set.
type Calendar struct {
	rules RuleSet
}

func New(region string) (*Calendar, error) {
	rules, ok := regionRules[region]
	if !ok {
		return nil, fmt.Errorf("unknown holiday region %q", region)
	}
	return &Calendar{rules: RuleSet{Region: region, rules: rules}}, nil
}

// MustNew is for wiring with a known-good region code.
func MustNew(region string) *Calendar {
	c, err := New(region)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calendar) Region() string {
	return c.rules.Region
}

// HolidaysForYear returns every holiday of the calendar's region for the
// given year, ordered by date. Any integer year yields a valid result.
func (c *Calendar) HolidaysForYear(year int) []Holiday {
	easter := EasterSunday(year)
	out := make([]Holiday, 0, len(c.rules.rules))
	for _, r := range c.rules.rules {
		if r.moveable {
			out = append(out, Holiday{Date: easter.AddDate(0, 0, r.offset), Name: r.name})
			continue
		}
		out = append(out, Holiday{
			Date: time.Date(year, r.month, r.day, 0, 0, 0, 0, time.UTC),
			Name: r.name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// HolidayName reports the name of the holiday observed on d, if any. The
// table is always recomputed for d's own year so moveable feasts never
// leak across year boundaries.
func (c *Calendar) HolidayName(d time.Time) (string, bool) {
	y, m, day := d.Date()
	for _, h := range c.HolidaysForYear(y) {
		hy, hm, hd := h.Date.Date()
		if hy == y && hm == m && hd == day {
			return h.Name, true
		}
	}
	return "", false
}

func (c *Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.HolidayName(d)
	return ok
}

// IsWeekend reports whether d falls on a Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports whether d counts toward absence capacity: neither
// a weekend day nor a public holiday.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	return !IsWeekend(d) && !c.IsHoliday(d)
}
