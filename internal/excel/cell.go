// internal/excel/cell.go
package excel

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet date serials count days from 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	dateShapeRe    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$|^\d{4}-\d{2}-\d{2}$`)
	timeShapeRe    = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
	numberPrefixRe = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`)
)

// ConvertExcelDate normalizes a raw cell value into an ISO date (YYYY-MM-DD)
// or nil when the value is absent or invalid. Pre-formatted DD/MM/YYYY and
// YYYY-MM-DD strings are returned unchanged as long as no component is zero;
// the shape check does not validate the calendar, so values like 31/02/2024
// pass through. Numeric values are read as day counts from the 1899-12-30
// serial epoch; anything below 1 is rejected.
func ConvertExcelDate(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" || v == "0" || v == "0000-00-00" || v == "00/00/0000" {
		return nil
	}

	if dateShapeRe.MatchString(v) {
		sep := "-"
		if strings.Contains(v, "/") {
			sep = "/"
		}
		for _, part := range strings.Split(v, sep) {
			if n, err := strconv.Atoi(part); err != nil || n == 0 {
				return nil
			}
		}
		return &v
	}

	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial < 1 {
		return nil
	}

	date := serialEpoch.AddDate(0, 0, int(math.Round(serial)))
	formatted := date.Format("2006-01-02")
	return &formatted
}

// ConvertExcelTime normalizes a raw cell value into HH:MM:SS (or keeps a
// pre-formatted HH:MM / HH:MM:SS string unchanged). Numeric values are read
// as a fraction of a 24-hour day. Returns nil for anything else.
func ConvertExcelTime(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" || v == "0" {
		return nil
	}

	if timeShapeRe.MatchString(v) {
		return &v
	}

	fraction, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}

	totalSeconds := int(math.Round(fraction * 86400))
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	formatted := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	return &formatted
}

// ParseNumber parses the leading numeric prefix of a cell, defaulting to 0
// for blank or non-numeric text. Anything after the prefix is ignored, so a
// comma ends the number and "1,250" reads as 1.
func ParseNumber(raw string) float64 {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	prefix := numberPrefixRe.FindString(v)
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return f
}
