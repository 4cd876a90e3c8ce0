package utils

import (
	"fmt"
	"strconv"
	"strings"

	"guildgreeter/domain/entities"
)

// AllKeyword selects the entire source balance in deposit and withdraw
const AllKeyword = "all"

// Amount is a parsed user-supplied quantity: either a fixed value or "all".
type Amount struct {
	Value int64
	All   bool
}

// ParseAmount parses "all" (case-insensitive, spaces ignored) or a positive
// integer, accepting thousand separators.
func ParseAmount(raw string) (Amount, error) {
	cleaned := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if cleaned == AllKeyword {
		return Amount{All: true}, nil
	}

	cleaned = strings.NewReplacer(",", "", "_", "").Replace(cleaned)
	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("%q is not a number or %q: %w", raw, AllKeyword, entities.ErrInvalidAmount)
	}
	if value <= 0 {
		return Amount{}, entities.ErrInvalidAmount
	}
	return Amount{Value: value}, nil
}

// FixedAmount wraps a concrete value
func FixedAmount(value int64) Amount {
	return Amount{Value: value}
}

// Resolve returns the concrete amount against the available balance. "all"
// of an empty balance is an invalid amount.
func (a Amount) Resolve(available int64) (int64, error) {
	if a.All {
		if available <= 0 {
			return 0, entities.ErrInvalidAmount
		}
		return available, nil
	}
	if a.Value <= 0 {
		return 0, entities.ErrInvalidAmount
	}
	return a.Value, nil
}

func (a Amount) String() string {
	if a.All {
		return AllKeyword
	}
	return strconv.FormatInt(a.Value, 10)
}
