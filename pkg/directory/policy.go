package directory

import "fmt"

// IDPolicy selects how the store assigns ids to new records.
type IDPolicy string

const (
	// IDPolicySequence assigns ids from a monotonic counter. A value is
	// never reused, even after the record that held it is deleted.
	IDPolicySequence IDPolicy = "sequence"

	// IDPolicyLength derives the next id from the current record count
	// plus one. After a deletion the next create can assign an id that a
	// surviving record still holds. Kept for compatibility with callers
	// that depend on the historical count-based numbering.
	IDPolicyLength IDPolicy = "length"
)

// ParseIDPolicy parses an id policy string.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch IDPolicy(s) {
	case IDPolicySequence, IDPolicyLength:
		return IDPolicy(s), nil
	case "":
		return IDPolicySequence, nil
	default:
		return "", fmt.Errorf("unknown id policy %q (valid: sequence, length)", s)
	}
}
