package filter

import "github.com/friendsofgo/errors"

// Operator is a column predicate operator, sent verbatim to the backend.
// It is a closed set: ParseOperator rejects anything else, so the codec can
// never emit an operator the backend does not understand.
type Operator string

const (
	OpLike           Operator = "LK"
	OpNotLike        Operator = "NL"
	OpLessThan       Operator = "LT"
	OpGreaterThan    Operator = "GT"
	OpEqual          Operator = "EQ"
	OpNotEqual       Operator = "NE"
	OpGreaterOrEqual Operator = "GE"
	OpLessOrEqual    Operator = "LE"
	OpHas            Operator = "HAS"
)

// Operators lists every operator in the order search forms offer them.
var Operators = []Operator{
	OpEqual,
	OpNotEqual,
	OpLike,
	OpNotLike,
	OpLessThan,
	OpLessOrEqual,
	OpGreaterThan,
	OpGreaterOrEqual,
	OpHas,
}

// ErrUnknownOperator is returned by ParseOperator for tokens outside the set.
var ErrUnknownOperator = errors.New("unknown filter operator")

// ParseOperator converts a wire token into an Operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", errors.Wrapf(ErrUnknownOperator, "%q", s)
	}
	return op, nil
}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	switch o {
	case OpLike, OpNotLike, OpLessThan, OpGreaterThan, OpEqual,
		OpNotEqual, OpGreaterOrEqual, OpLessOrEqual, OpHas:
		return true
	}
	return false
}

// IsLike reports whether values for o carry % wildcard markers.
func (o Operator) IsLike() bool {
	return o == OpLike || o == OpNotLike
}

// IsLowerBound reports whether o bounds a range from below.
func (o Operator) IsLowerBound() bool {
	return o == OpGreaterThan || o == OpGreaterOrEqual
}

// IsUpperBound reports whether o bounds a range from above.
func (o Operator) IsUpperBound() bool {
	return o == OpLessThan || o == OpLessOrEqual
}

// Label is the human-readable name search forms show for o.
func (o Operator) Label() string {
	switch o {
	case OpLike:
		return "contains"
	case OpNotLike:
		return "does not contain"
	case OpLessThan:
		return "<"
	case OpGreaterThan:
		return ">"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreaterOrEqual:
		return ">="
	case OpLessOrEqual:
		return "<="
	case OpHas:
		return "has"
	}
	return string(o)
}

// Conjunction joins two filter expressions.
type Conjunction string

const (
	And Conjunction = "AND"
	Or  Conjunction = "OR"
)
