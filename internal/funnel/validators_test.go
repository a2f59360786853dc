package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber(t *testing.T) {
	assert.Equal(t, "+61400000000", NormalizePhoneNumber("+61 400 000 000"))
	assert.Equal(t, "0400000000", NormalizePhoneNumber("(04) 0000-0000"))
	assert.Equal(t, "+14155552671", NormalizePhoneNumber("+1 (415) 555-2671"))
}

func TestIsValidPhoneNumber(t *testing.T) {
	assert.True(t, IsValidPhoneNumber("+61 400 123 456"))
	assert.True(t, IsValidPhoneNumber("0400 123 456"))
	assert.False(t, IsValidPhoneNumber("12345"))
	assert.False(t, IsValidPhoneNumber("1234567890"))
	assert.False(t, IsValidPhoneNumber(""))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("sam@example.com"))
	assert.False(t, IsValidEmail("sam"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail("sam@"))
	assert.False(t, IsValidEmail("sam@example com"))
}