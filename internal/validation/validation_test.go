package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCommunityName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		community string
		wantErr   bool
	}{
		{"Valid", "Runners", false},
		{"Spaces Inside", "Trail Runners", false},
		{"Unicode", "Läufer", false},
		{"Exactly Max Length", strings.Repeat("a", MaxCommunityNameLen), false},
		{"Too Short", "ab", true},
		{"Too Long", strings.Repeat("a", MaxCommunityNameLen+1), true},
		{"Leading Space", " Runners", true},
		{"Control Character", "Run\nners", true},
		{"Reserved", "Admin", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCommunityName(tt.community)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Min Length", "abc", false},
		{"Too Short", "tu", true},
		{"Illegal Chars", "user@123", true},
		{"Starts Underscore", "_user", true},
		{"Ends Underscore", "user_", true},
		{"Too Long", strings.Repeat("a", 31), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"No Dot In Domain", "user@localhost", true},
		{"Display Name", "Bob <bob@example.com>", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
		{"Too Long", strings.Repeat("a", 250) + "@b.co", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "correcthorse9", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Too Short", "abc1", true},
		{"Too Long", strings.Repeat("a", 128) + "1", true},
		{"No Digit", "passwordonly", true},
		{"No Letter", "1234567890", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmailInDomain(t *testing.T) {
	t.Parallel()
	assert.True(t, EmailInDomain("root@Agora.dev", "agora.dev"))
	assert.False(t, EmailInDomain("root@agora.dev.evil.com", "agora.dev"))
	assert.False(t, EmailInDomain("root@notagora.dev", "agora.dev"))
	assert.False(t, EmailInDomain("root@agora.dev", ""))
}

func TestValidateGoal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		title   string
		unit    string
		target  float64
		wantErr bool
	}{
		{name: "valid", title: "Run 100k", unit: "km", target: 100},
		{name: "blank title", title: "   ", unit: "km", target: 100, wantErr: true},
		{name: "long title", title: strings.Repeat("a", MaxGoalTitleLen+1), unit: "km", target: 100, wantErr: true},
		{name: "missing unit", title: "Run", unit: "", target: 100, wantErr: true},
		{name: "long unit", title: "Run", unit: strings.Repeat("k", MaxGoalUnitLen+1), target: 100, wantErr: true},
		{name: "zero target", title: "Run", unit: "km", target: 0, wantErr: true},
		{name: "infinite target", title: "Run", unit: "km", target: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateGoal(tt.title, "", tt.unit, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, ValidateProgress(math.NaN()))
	assert.NoError(t, ValidateProgress(-2.5))
}
