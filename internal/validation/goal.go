package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	MaxGoalTitleLen = 120
	MaxGoalUnitLen  = 20
)

// ValidateGoal checks the text fields and target of a personal goal.
func ValidateGoal(title, description, unit string, target float64) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("goal title is required")
	}
	if utf8.RuneCountInString(title) > MaxGoalTitleLen {
		return fmt.Errorf("goal title too long (max %d characters)", MaxGoalTitleLen)
	}
	if err := ValidateDescription(description); err != nil {
		return err
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return fmt.Errorf("goal unit is required")
	}
	if utf8.RuneCountInString(unit) > MaxGoalUnitLen {
		return fmt.Errorf("goal unit too long (max %d characters)", MaxGoalUnitLen)
	}
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return fmt.Errorf("goal target must be a positive number")
	}
	return nil
}

// ValidateProgress rejects non-finite progress amounts.
func ValidateProgress(delta float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("progress must be a finite number")
	}
	return nil
}
