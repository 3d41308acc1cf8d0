// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"strconv"
	"strings"
)

// DBToFactor converts a gain in decibels to a linear amplitude factor.
func DBToFactor(db float64) float64 {
	return math.Pow(10, db/20)
}

// ParseDB reads a ReplayGain style value such as "-6.20 dB" or "+1.5".
func ParseDB(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[len(s)-2:], "db") {
		s = strings.TrimSpace(s[:len(s)-2])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
