package record

import "fmt"

// Status is the closed set of lifecycle states an item version can be in.
// The zero value is not a valid status.
type Status uint8

const (
	statusInvalid Status = iota
	StatusApproved
	StatusInitiated
	StatusUnpublished
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusApproved, StatusInitiated, StatusUnpublished}

func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "APPROVED"
	case StatusInitiated:
		return "INITIATED"
	case StatusUnpublished:
		return "UNPUBLISHED"
	case statusInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusInitiated, StatusUnpublished:
		return true
	case statusInvalid:
		return false
	default:
		return false
	}
}

// ParseStatus matches the wire name exactly (case-sensitive).
func ParseStatus(name string) (Status, error) {
	for _, s := range Statuses {
		if s.String() == name {
			return s, nil
		}
	}
	return statusInvalid, fmt.Errorf("unknown status %q", name)
}

// MarshalText writes the wire name. Invalid statuses do not encode.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot encode %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses the wire name.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
