package sheetorm_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ideamans/go-sheetorm"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"$ 100.00", 100, false},
		{"$1,234.56", 1234.56, false},
		{"-$5", -5, false},
		{"($5.00)", -5, false},
		{"42", 42, false},
		{"$", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := sheetorm.ParseCurrency(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCurrency(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, sheetorm.ErrInvalidValue) {
				t.Errorf("error %v does not wrap ErrInvalidValue", err)
			}
			if got != tt.want {
				t.Errorf("ParseCurrency(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"1,234.56", 1234.56, false},
		{" 33.625 ", 33.625, false},
		{"-.5", -0.5, false},
		{"1e3", 1000, false},
		{"12abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := sheetorm.ParseNumber(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v, want %v, wantErr %v", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseInteger(t *testing.T) {
	if got, err := sheetorm.ParseInteger("1,200"); err != nil || got != 1200 {
		t.Errorf("ParseInteger(1,200) = %d, %v", got, err)
	}
	if got, err := sheetorm.ParseInteger("12.0"); err != nil || got != 12 {
		t.Errorf("ParseInteger(12.0) = %d, %v", got, err)
	}
	if _, err := sheetorm.ParseInteger("12.5"); !errors.Is(err, sheetorm.ErrInvalidValue) {
		t.Errorf("ParseInteger(12.5) error = %v", err)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"TRUE", "true", "1", "Yes"} {
		if v, err := sheetorm.ParseBool(s); err != nil || !v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, err)
		}
	}
	for _, s := range []string{"FALSE", "0", "no"} {
		if v, err := sheetorm.ParseBool(s); err != nil || v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, err)
		}
	}
	if _, err := sheetorm.ParseBool("maybe"); err == nil {
		t.Error("ParseBool(maybe) should fail")
	}
}

func TestParsePhoneNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"+1(703)-999-2222", 7039992222, true},
		{"(703) 999 2222", 7039992222, true},
		{"7039992222", 7039992222, true},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		got, ok, err := sheetorm.ParsePhoneNumber(tt.input)
		if err != nil || ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePhoneNumber(%q) = %d, %v, %v, want %d, %v", tt.input, got, ok, err, tt.want, tt.wantOK)
		}
	}
}

func TestSerialConversion(t *testing.T) {
	tests := []struct {
		serial float64
		want   time.Time
	}{
		{0, time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)},
		{33.625, time.Date(1900, 2, 1, 15, 0, 0, 0, time.UTC)},
		{45000.5, time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := sheetorm.TimeFromSerial(tt.serial); !got.Equal(tt.want) {
			t.Errorf("TimeFromSerial(%v) = %v, want %v", tt.serial, got, tt.want)
		}
		if got := sheetorm.SerialFromTime(tt.want); got != tt.serial {
			t.Errorf("SerialFromTime(%v) = %v, want %v", tt.want, got, tt.serial)
		}
	}

	// The wall clock is kept regardless of location.
	tokyo := time.FixedZone("JST", 9*60*60)
	if got := sheetorm.SerialFromTime(time.Date(1900, 2, 1, 15, 0, 0, 0, tokyo)); got != 33.625 {
		t.Errorf("SerialFromTime(JST) = %v, want 33.625", got)
	}
}
