package timeutil

import (
	"strings"
	"time"
)

/*
Date parsing for feed and playlist metadata.

Publication dates in the wild are anything from strict RFC 822 to
"2007-06-27 12:00:00" to "Tuesday June 5th". ParseDate tries, in order:

 1. ISO 8601 / RFC 3339
 2. the strict RFC 822 positional grammar
 3. an order-independent scan that lets each token claim the first
    component it plausibly fills

Tokens are classified up front with a bitmask describing what they could be.
*/

type dateTokenMask uint8

const (
	maskNonNumeric dateTokenMask = 1 << iota
	maskNonWeekday
	maskNonMonth
	maskNonTime
	maskHasColon
	maskNonTimezoneAlpha
	maskNonTimezoneNumeric
	maskHasSign
)

const (
	weekdayLetters    = "SundayMondayTuesdayWednesdayThursdayFridaySaturday"
	monthLetters      = "JanuaryFebruaryMarchAprilMayJuneJulyAugustSeptemberOctoberNovemberDecember"
	timezoneLetters   = "UTGMESDPCABFHIKLNORVWXYZ()"
	dateTokenBreakers = "-/,\t\r\n "
)

var monthNames = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

var weekdayNames = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// timezone offsets in +-HHMM form. Military letters follow RFC 822, whose
// signs are the reverse of the usual convention.
var timezoneOffsets = map[string]int{
	"UT": 0, "UTC": 0, "GMT": 0,
	"EDT": -400, "EST": -500,
	"CDT": -500, "CST": -600,
	"MDT": -600, "MST": -700,
	"PDT": -700, "PST": -800,
	"Z": 0,
	"A": -100, "B": -200, "C": -300, "D": -400, "E": -500, "F": -600,
	"G": -700, "H": -800, "I": -900, "K": -1000, "L": -1100, "M": -1200,
	"N": 100, "O": 200, "P": 300, "Q": 400, "R": 500, "S": 600,
	"T": 700, "U": 800, "V": 900, "W": 1000, "X": 1100, "Y": 1200,
}

var dateCharMasks = buildDateCharMasks()

func buildDateCharMasks() [256]dateTokenMask {
	var table [256]dateTokenMask
	for i := 0; i < 256; i++ {
		c := byte(i)
		var m dateTokenMask
		isDigit := c >= '0' && c <= '9'
		if !isDigit {
			m |= maskNonNumeric
		}
		if !strings.ContainsRune(strings.ToLower(weekdayLetters)+weekdayLetters, rune(c)) || c == 0 {
			m |= maskNonWeekday
		}
		if !strings.ContainsRune(strings.ToLower(monthLetters)+monthLetters, rune(c)) || c == 0 {
			m |= maskNonMonth
		}
		if !isDigit && c != ':' {
			m |= maskNonTime
		}
		if c == ':' {
			m |= maskHasColon
		}
		if !strings.ContainsRune(timezoneLetters, rune(c)) || c == 0 {
			m |= maskNonTimezoneAlpha
		}
		if !isDigit && c != '+' && c != '-' {
			m |= maskNonTimezoneNumeric
		}
		if c == '+' || c == '-' {
			m |= maskHasSign
		}
		table[i] = m
	}
	return table
}

type dateToken struct {
	text string
	mask dateTokenMask
}

func (t dateToken) isNumeric() bool { return t.mask&maskNonNumeric == 0 }
func (t dateToken) isWeekday() bool { return t.mask&maskNonWeekday == 0 }
func (t dateToken) isMonth() bool   { return t.mask&maskNonMonth == 0 }
func (t dateToken) isTime() bool    { return t.mask&maskHasColon != 0 && t.mask&maskNonTime == 0 }
func (t dateToken) isTimezone() bool {
	alpha := t.mask&maskNonTimezoneAlpha == 0
	numeric := t.mask&maskHasSign != 0 && t.mask&maskNonTimezoneNumeric == 0
	return alpha || numeric
}

// tokenizeDate splits on the breaker set. The first byte of a token is taken
// verbatim so a leading sign survives ("-0800").
func tokenizeDate(s string) []dateToken {
	var tokens []dateToken
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		mask := dateCharMasks[s[i]]
		i++
		for i < len(s) && strings.IndexByte(dateTokenBreakers, s[i]) < 0 {
			mask |= dateCharMasks[s[i]]
			i++
		}
		tokens = append(tokens, dateToken{text: s[start:i], mask: mask})
		if i < len(s) {
			i++
		}
	}
	return tokens
}

// ParseDate converts a publication date into seconds since the Unix epoch,
// normalised to UTC. The second return value is false when nothing in the
// input could be recognised as a date.
func ParseDate(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if t, ok := parseISO8601(s); ok {
		return t, true
	}

	tokens := tokenizeDate(s)
	if len(tokens) == 0 {
		return 0, false
	}
	if t, ok := parseStrictDate(tokens); ok {
		return t, true
	}
	return parseLenientDate(tokens)
}

var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

func parseISO8601(s string) (int64, bool) {
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

type dateParts struct {
	year, month, day      int
	hour, minute, second  int
	offset                int
	gotYear, gotMonth     bool
	gotDay, gotTime       bool
	gotWeekday, gotOffset bool
}

func (p dateParts) epoch() int64 {
	year := p.year
	if !p.gotYear {
		year = 1900
	}
	day := p.day
	if !p.gotDay {
		day = 1
	}
	t := time.Date(year, time.Month(p.month+1), day, p.hour, p.minute, p.second, 0, time.UTC)
	return t.Unix() - int64((p.offset/100)*3600+(p.offset%100)*60)
}

// parseStrictDate implements [weekday] day month year time [zone].
func parseStrictDate(tokens []dateToken) (int64, bool) {
	var p dateParts
	i := 0

	if _, ok := lookupWeekday(tokens[i].text); ok {
		i++
	}
	if i >= len(tokens) {
		return 0, false
	}

	day, ok := decodeDay(tokens[i].text)
	if !ok {
		return 0, false
	}
	p.day = day
	i++

	if i >= len(tokens) {
		return 0, false
	}
	month, ok := lookupMonth(tokens[i].text)
	if !ok {
		return 0, false
	}
	p.month = month
	i++

	if i >= len(tokens) {
		return 0, false
	}
	year, ok := decodeYear(tokens[i].text)
	if !ok {
		return 0, false
	}
	p.year = year
	i++

	if i >= len(tokens) {
		return 0, false
	}
	hour, minute, second, ok := decodeTime(tokens[i].text)
	if !ok {
		return 0, false
	}
	p.hour, p.minute, p.second = hour, minute, second
	i++

	p.gotYear, p.gotMonth, p.gotDay, p.gotTime = true, true, true, true

	// zone, possibly spread over two tokens such as "+0000 (UTC)"
	for n := 0; i < len(tokens) && n < 2; i, n = i+1, n+1 {
		if offset, ok := lookupTimezone(tokens[i].text); ok {
			p.offset = offset
			break
		}
	}
	return p.epoch(), true
}

// parseLenientDate lets every token claim the first still-unset component it
// can fill, with precedence weekday, month name, time, zone, 4-digit year,
// numeric month, day, 2-digit year.
func parseLenientDate(tokens []dateToken) (int64, bool) {
	var p dateParts

	for i, tok := range tokens {
		if tok.isWeekday() && !p.gotWeekday {
			if _, ok := lookupWeekday(tok.text); ok {
				p.gotWeekday = true
				continue
			}
		}

		if tok.isMonth() && !p.gotMonth {
			if n, ok := lookupMonth(tok.text); ok {
				p.month = n
				p.gotMonth = true
				continue
			}
		}

		if tok.isTime() && !p.gotTime {
			if h, m, s, ok := decodeTime(tok.text); ok {
				p.hour, p.minute, p.second = h, m, s
				p.gotTime = true
				continue
			}
		}

		if tok.isTimezone() && !p.gotOffset {
			if offset, ok := lookupTimezone(tok.text); ok {
				p.offset = offset
				p.gotOffset = true
				continue
			}
		}

		if !tok.isNumeric() {
			continue
		}

		if len(tok.text) == 4 && !p.gotYear {
			if year, ok := decodeYear(tok.text); ok {
				p.year = year
				p.gotYear = true
			}
			continue
		}

		// a small number followed by another number reads as MM-DD
		if !p.gotMonth && i+1 < len(tokens) && tokens[i+1].isNumeric() {
			n, _ := decodeInt(tok.text)
			if n > 12 {
				p.day = n
				p.gotDay = true
			} else if n > 0 {
				p.month = n - 1
				p.gotMonth = true
			}
			continue
		}

		if !p.gotDay {
			if day, ok := decodeDay(tok.text); ok {
				p.day = day
				p.gotDay = true
				continue
			}
		}

		if !p.gotYear {
			if year, ok := decodeYear(tok.text); ok {
				p.year = year
				p.gotYear = true
			}
		}
	}

	if !p.gotYear && !p.gotMonth && !p.gotDay && !p.gotTime {
		return 0, false
	}
	return p.epoch(), true
}

func lookupMonth(s string) (int, bool) {
	if len(s) < 3 {
		return 0, false
	}
	prefix := strings.ToLower(s[:3])
	for i, name := range monthNames {
		if prefix == name {
			return i, true
		}
	}
	return 0, false
}

func lookupWeekday(s string) (int, bool) {
	if len(s) < 3 {
		return 0, false
	}
	prefix := strings.ToLower(s[:3])
	for i, name := range weekdayNames {
		if prefix == name {
			return i, true
		}
	}
	return 0, false
}

// lookupTimezone accepts a signed four digit offset verbatim, otherwise a
// named zone, optionally parenthesised.
func lookupTimezone(s string) (int, bool) {
	if len(s) == 5 && (s[0] == '+' || s[0] == '-') {
		n, ok := decodeInt(s)
		return n, ok
	}
	name := strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	offset, ok := timezoneOffsets[strings.ToUpper(name)]
	return offset, ok
}

func decodeInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || !isDigits(s) || len(s) > 9 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return sign * n, true
}

func decodeDay(s string) (int, bool) {
	n, ok := decodeInt(s)
	if !ok || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

// decodeYear widens two digit years (<70 is 20xx) and rejects anything before 1969.
func decodeYear(s string) (int, bool) {
	n, ok := decodeInt(s)
	if !ok {
		return 0, false
	}
	if n < 100 {
		if n < 70 {
			n += 2000
		} else {
			n += 1900
		}
	}
	if n < 1969 {
		return 0, false
	}
	return n, true
}

func decodeTime(s string) (hour, minute, second int, ok bool) {
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, 0, false
	}
	values := make([]int, 3)
	for i, f := range fields {
		if f == "" || !isDigits(f) {
			return 0, 0, 0, false
		}
		n, _ := decodeInt(f)
		values[i] = n
	}
	return values[0], values[1], values[2], true
}
