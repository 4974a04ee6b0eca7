package types

import (
	"errors"
	"testing"
)

func TestParsePowerState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PowerState
		wantErr bool
	}{
		{name: "on upper", input: "ON", want: PowerOn},
		{name: "on lower", input: "on", want: PowerOn},
		{name: "on digit", input: "1", want: PowerOn},
		{name: "on bool", input: "true", want: PowerOn},
		{name: "off", input: "OFF", want: PowerOff},
		{name: "off digit", input: "0", want: PowerOff},
		{name: "off bool", input: "false", want: PowerOff},
		{name: "toggle", input: "Toggle", want: PowerToggle},
		{name: "blink", input: "BLINK", want: PowerBlink},
		{name: "blinkoff", input: "blinkoff", want: PowerBlinkOff},
		{name: "whitespace trimmed", input: " ON ", want: PowerOn},
		{name: "garbage", input: "MAYBE", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePowerState(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPowerState) {
					t.Fatalf("ParsePowerState(%q) error = %v, want ErrInvalidPowerState", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePowerState(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePowerState(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPowerStateString(t *testing.T) {
	tests := []struct {
		state PowerState
		want  string
	}{
		{PowerOff, "OFF"},
		{PowerOn, "ON"},
		{PowerToggle, "TOGGLE"},
		{PowerBlink, "BLINK"},
		{PowerBlinkOff, "BLINKOFF"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("PowerState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestNewPowerIndex(t *testing.T) {
	tests := []struct {
		name    string
		idx     int
		suffix  string
		wantErr bool
	}{
		{name: "all relays", idx: 0, suffix: ""},
		{name: "first relay", idx: 1, suffix: "1"},
		{name: "last relay", idx: 8, suffix: "8"},
		{name: "too high", idx: 9, wantErr: true},
		{name: "negative", idx: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPowerIndex(tt.idx)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("NewPowerIndex(%d) error = %v, want ErrOutOfRange", tt.idx, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPowerIndex(%d) unexpected error: %v", tt.idx, err)
			}
			if got.Suffix() != tt.suffix {
				t.Errorf("PowerIndex(%d).Suffix() = %q, want %q", tt.idx, got.Suffix(), tt.suffix)
			}
		})
	}
}
