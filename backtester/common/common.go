package common

import (
	"fmt"
	"strings"
)

// String implements fmt.Stringer
func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return fmt.Sprintf("side(%d)", int8(s))
}

// Sign returns the multiplier applied to a realised return
func (s Side) Sign() float64 {
	return float64(s)
}

// ParseSide converts the config string value into a Side
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "":
		return Long, nil
	case "short", "sell":
		return Short, nil
	}
	return 0, fmt.Errorf("%w: side '%v'", ErrInvalidSetting, s)
}

// MarshalText implements encoding.TextMarshaler
func (s Side) MarshalText() ([]byte, error) {
	if s != Long && s != Short {
		return nil, fmt.Errorf("%w: side %d", ErrInvalidSetting, int8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
