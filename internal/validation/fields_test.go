package validation

import (
	"strings"
	"testing"
	"time"

	"basspress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireValidationError asserts the failure carries the code handlers
// map to a 400 response.
func requireValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "bass_head-42", false},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"illegal characters", "user name", true},
		{"leading underscore", "_user", true},
		{"trailing hyphen", "user-", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.wantErr {
				requireValidationError(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("dana.cruz+test@example.co.uk"))
	requireValidationError(t, ValidateEmail("not-an-email"))
	requireValidationError(t, ValidateEmail("missing@tld"))
	requireValidationError(t, ValidateEmail(strings.Repeat("a", 250)+"@b.com"))
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Secret1", false},
		{"cyrillic counted per character", "Пароль1", false},
		{"too short", "Ab1", true},
		{"no uppercase", "secret1", true},
		{"no lowercase", "SECRET1", true},
		{"no digit", "Secrets", true},
		{"too long", "Aa1" + strings.Repeat("x", 126), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr {
				requireValidationError(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sealed-vs-ported-what-actually-hits-harder",
		Slugify("Sealed vs. Ported: What Actually Hits Harder?"))
	assert.Equal(t, "12-volt-wiring-101", Slugify("  12 Volt & Wiring 101  "))
	assert.True(t, strings.HasPrefix(Slugify("!!!"), "untitled-"),
		"titles with no usable characters get a fallback slug")
}

func TestDedupeSlug(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	got := DedupeSlug("sub-box-build", now)
	assert.Equal(t, "sub-box-build-1777636800000", got)
}
