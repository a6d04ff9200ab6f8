package signals

import (
	"fmt"
	"strings"
)

// Kind is the classification of one detection call. The set is closed: values are
// only produced by the constants below and by UnmarshalText, which rejects unknown names.
type Kind uint8

const (
	KindNeutral Kind = iota
	KindLong
	KindShort
	KindExitLong
	KindExitShort
)

// Kinds lists every kind in declaration order
var Kinds = []Kind{KindNeutral, KindLong, KindShort, KindExitLong, KindExitShort}

func (k Kind) String() string {
	switch k {
	case KindNeutral:
		return "NEUTRAL"
	case KindLong:
		return "LONG"
	case KindShort:
		return "SHORT"
	case KindExitLong:
		return "EXIT_LONG"
	case KindExitShort:
		return "EXIT_SHORT"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// IsEntry reports whether the kind opens a position
func (k Kind) IsEntry() bool {
	return k == KindLong || k == KindShort
}

// IsExit reports whether the kind closes a position
func (k Kind) IsExit() bool {
	return k == KindExitLong || k == KindExitShort
}

// ParseKind maps a symbolic name back to a Kind
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return KindNeutral, fmt.Errorf("unknown signal kind %q", s)
}

// MarshalText encodes the kind by name so history files stay human-diffable
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindNeutral, KindLong, KindShort, KindExitLong, KindExitShort:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("cannot encode unhandled signal kind %d", uint8(k))
	}
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Position is the currently held position
type Position uint8

const (
	PositionNone Position = iota
	PositionLong
	PositionShort
)

func (p Position) String() string {
	switch p {
	case PositionNone:
		return "NONE"
	case PositionLong:
		return "LONG"
	case PositionShort:
		return "SHORT"
	default:
		return fmt.Sprintf("Position(%d)", uint8(p))
	}
}

// Sign returns 1 for long, -1 for short and 0 when flat
func (p Position) Sign() int {
	switch p {
	case PositionLong:
		return 1
	case PositionShort:
		return -1
	default:
		return 0
	}
}

// Transition applies the state update rule of one signal to a position
func Transition(p Position, k Kind) Position {
	switch k {
	case KindLong:
		return PositionLong
	case KindShort:
		return PositionShort
	case KindExitLong, KindExitShort:
		return PositionNone
	case KindNeutral:
		return p
	default:
		panic(fmt.Sprintf("signals: unhandled signal kind %d", uint8(k)))
	}
}

// Replay rebuilds the position by running the whole history forward from PositionNone
func Replay(records []Record) Position {
	position := PositionNone
	for _, r := range records {
		position = Transition(position, r.Kind)
	}
	return position
}
