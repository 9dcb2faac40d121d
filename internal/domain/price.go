package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePrice derives a numeric total from free-form price text.
// Thousands separators are dropped and every number in the text is summed,
// so "1,200 + 300 delivery" yields 1500. Text without numbers yields 0.
// The result is always finite and non-negative.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0
	}

	var total float64
	for _, m := range amountPattern.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		total += v
	}

	if math.IsInf(total, 0) || math.IsNaN(total) {
		return 0
	}
	return total
}

// FormatPrice renders an amount as a thousands-grouped integer ("2,500").
func FormatPrice(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "0"
	}
	return humanize.Comma(int64(math.RoundToEven(v)))
}
