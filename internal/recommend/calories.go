package recommend

import (
	"strconv"
	"strings"
)

// EstimateCalories gives a daily calorie target from sex and age. Sex "male"
// uses the male base, anything else the female base. Under 30 adds 100 kcal,
// over 50 subtracts 100. An age that is not all digits leaves the base as is.
func (e *Engine) EstimateCalories(sex, age string) int {
	base := e.cfg.FemaleCalories
	if strings.EqualFold(strings.TrimSpace(sex), "male") {
		base = e.cfg.MaleCalories
	}
	years, ok := parseAge(age)
	if !ok {
		return base
	}
	switch {
	case years < 30:
		base += 100
	case years > 50:
		base -= 100
	}
	return base
}

func parseAge(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
