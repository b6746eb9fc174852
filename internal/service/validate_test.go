package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw string
		ok bool
	}{
		{"Str0ng!pass", true},
		{"Aa1!aaaa", true},
		{"Aa1!aaa", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSymbol11", false},
		{"Aa1!" + strings.Repeat("x", 69), false},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.pw)
		assert.Equal(t, tt.ok, err == nil, "password %q", tt.pw)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@acme.test"))
	assert.Error(t, ValidateEmail("ada@localhost"))
	assert.Error(t, ValidateEmail("Ada <ada@acme.test>"))
	assert.Error(t, ValidateEmail("ada"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+14155550100"))
	assert.Error(t, ValidatePhone("4155550100"))
	assert.Error(t, ValidatePhone("+0123456789"))
	assert.Error(t, ValidatePhone("+1 415 555"))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://acme.test", "website"))
	assert.Error(t, ValidateURL("ftp://acme.test", "website"))
	assert.Error(t, ValidateURL("acme.test", "website"))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-02-29", "dob")
	assert.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	d, err = parseDate("", "dob")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseDate("29/02/2024", "dob")
	assert.Error(t, err)
}
