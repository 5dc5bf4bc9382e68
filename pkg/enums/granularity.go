package enums

import "fmt"

// Granularity selects the contract key used for growth attribution.
type Granularity string

const (
	GranularityCustomer    Granularity = "customer"
	GranularityCustomerSKU Granularity = "customer_sku"
)

var validGranularities = []Granularity{
	GranularityCustomer,
	GranularityCustomerSKU,
}

// String implements fmt.Stringer.
func (g Granularity) String() string {
	return string(g)
}

// IsValid reports whether the value is a known Granularity.
func (g Granularity) IsValid() bool {
	for _, candidate := range validGranularities {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGranularity converts raw input into a Granularity.
func ParseGranularity(value string) (Granularity, error) {
	for _, candidate := range validGranularities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid granularity %q", value)
}
