package enums

import "fmt"

// DeductionKind distinguishes how a gross-to-net deduction is expressed.
type DeductionKind string

const (
	DeductionKindFixed      DeductionKind = "fixed"
	DeductionKindPercentage DeductionKind = "percentage"
)

var validDeductionKinds = []DeductionKind{
	DeductionKindFixed,
	DeductionKindPercentage,
}

// String implements fmt.Stringer.
func (d DeductionKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeductionKind.
func (d DeductionKind) IsValid() bool {
	for _, candidate := range validDeductionKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeductionKind converts raw input into a DeductionKind.
func ParseDeductionKind(value string) (DeductionKind, error) {
	for _, candidate := range validDeductionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deduction kind %q", value)
}
