package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Ethiopian calendar months, including common spelling variants.
	amMonths = map[string]int{
		"መስከረም": 1,
		"ጥቅምት":  2,
		"ኅዳር":   3,
		"ህዳር":   3,
		"ታኅሣሥ":  4,
		"ታህሳስ":  4,
		"ጥር":    5,
		"የካቲት":  6,
		"መጋቢት":  7,
		"ሚያዝያ":  8,
		"ግንቦት":  9,
		"ሰኔ":    10,
		"ሐምሌ":   11,
		"ሀምሌ":   11,
		"ነሐሴ":   12,
		"ነሃሴ":   12,
		"ጳጉሜን":  13,
		"ጳጉሜ":   13,
	}

	amToday     = []string{"ዛሬ", "today"}
	amYesterday = []string{"ትናንት", "ትላንት", "yesterday"}

	// "መስከረም 2, 2016" or "መስከረም 2/2016 ዓ.ም"
	amMonthFirst = regexp.MustCompile(`(\p{Ethiopic}+)\s*(\d{1,2})\s*[,/\s]\s*(\d{4})`)
	// "2 መስከረም 2016"
	amDayFirst = regexp.MustCompile(`(\d{1,2})\s+(\p{Ethiopic}+)\s*,?\s*(\d{4})`)

	gregorianLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"02 Jan 2006",
		"Monday, January 2, 2006",
		"Mon, 02 Jan 2006 15:04:05 MST",
	}
)

// DateParser normalizes the free-text dates found on article pages. It accepts
// Gregorian layouts, Ethiopian-calendar dates written with Amharic month names,
// and the relative words for today and yesterday.
type DateParser struct {
	now func() time.Time
}

func NewDateParser() *DateParser {
	return &DateParser{now: time.Now}
}

// Parse returns the instant for dateStr in UTC. Ethiopian dates resolve to
// midnight of the equivalent Gregorian day.
func (dp *DateParser) Parse(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	lowerDate := strings.ToLower(dateStr)
	for _, today := range amToday {
		if strings.Contains(lowerDate, today) {
			return dp.now().UTC().Truncate(24 * time.Hour), nil
		}
	}
	for _, yesterday := range amYesterday {
		if strings.Contains(lowerDate, yesterday) {
			return dp.now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour), nil
		}
	}

	for _, layout := range gregorianLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.UTC(), nil
		}
	}

	return dp.parseEthiopian(dateStr)
}

func (dp *DateParser) parseEthiopian(dateStr string) (time.Time, error) {
	var monthName, dayStr, yearStr string
	if m := amMonthFirst.FindStringSubmatch(dateStr); m != nil {
		monthName, dayStr, yearStr = m[1], m[2], m[3]
	} else if m := amDayFirst.FindStringSubmatch(dateStr); m != nil {
		dayStr, monthName, yearStr = m[1], m[2], m[3]
	} else {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
	}

	month, ok := amMonths[monthName]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month: %s", monthName)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %q: %w", dayStr, err)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year: %q: %w", yearStr, err)
	}

	maxDay := 30
	if month == 13 {
		maxDay = 5
		if year%4 == 3 {
			maxDay = 6
		}
	}
	if day < 1 || day > maxDay {
		return time.Time{}, fmt.Errorf("invalid day: %d", day)
	}

	return EthiopianToGregorian(year, month, day), nil
}

// EthiopianToGregorian converts an Ethiopian-calendar date to midnight UTC of
// the same day in the Gregorian calendar.
func EthiopianToGregorian(year, month, day int) time.Time {
	// Julian day number of 1 Meskerem 1 (Amete Mihret) is 1724221.
	const ethiopicEpoch = 1724220
	jdn := ethiopicEpoch + 365*(year-1) + year/4 + 30*(month-1) + day

	// Julian day 2451545 is 2000-01-01.
	return time.Date(2000, time.January, 1+(jdn-2451545), 0, 0, 0, 0, time.UTC)
}
