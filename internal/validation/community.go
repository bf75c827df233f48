package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinCommunityNameLen = 3
	MaxCommunityNameLen = 50
	MaxDescriptionLen   = 500
)

var reservedCommunityNames = map[string]struct{}{
	"admin":       {},
	"api":         {},
	"auth":        {},
	"communities": {},
	"discussions": {},
	"comments":    {},
	"search":      {},
	"trending":    {},
	"users":       {},
	"ws":          {},
	"swagger":     {},
	"metrics":     {},
	"health":      {},
	"login":       {},
	"register":    {},
}

// ValidateCommunityName checks length, control characters and reserved names.
// Comparison against reserved names ignores case.
func ValidateCommunityName(name string) error {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < MinCommunityNameLen || n > MaxCommunityNameLen {
		return fmt.Errorf("community name must be %d-%d characters", MinCommunityNameLen, MaxCommunityNameLen)
	}
	if trimmed != name {
		return fmt.Errorf("community name cannot start or end with whitespace")
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("community name contains control characters")
		}
	}
	if _, exists := reservedCommunityNames[strings.ToLower(name)]; exists {
		return fmt.Errorf("community name is reserved")
	}
	return nil
}

// ValidateDescription bounds free-text descriptions.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return fmt.Errorf("description too long (max %d characters)", MaxDescriptionLen)
	}
	return nil
}
