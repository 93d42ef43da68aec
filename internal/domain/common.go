package domain

import (
	"fmt"
	"strings"
)

// Direction is the side of a leveraged trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ParseDirection converts user or signal input ("long", "Short", "BUY", ...) into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return Long, nil
	case "SHORT", "SELL":
		return Short, nil
	default:
		return "", fmt.Errorf("unknown trade direction %q", s)
	}
}

// IsValid reports whether d is Long or Short.
func (d Direction) IsValid() bool {
	return d == Long || d == Short
}

// String returns the title-cased name used in reports ("Long", "Short").
func (d Direction) String() string {
	switch d {
	case Long:
		return "Long"
	case Short:
		return "Short"
	default:
		return string(d)
	}
}

// Source identifies where a trade setup came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceCSV      Source = "csv"
	SourceTelegram Source = "telegram"
)
