package shared_file

import "fmt"

type Status string

const (
	StatusActive    Status = "active"
	StatusRetrieved Status = "retrieved"
	StatusExpired   Status = "expired"
	StatusDeleted   Status = "deleted"
)

var transitions = map[Status][]Status{
	StatusActive:    {StatusRetrieved, StatusExpired, StatusDeleted},
	StatusRetrieved: {StatusRetrieved, StatusExpired, StatusDeleted},
	StatusExpired:   {StatusDeleted},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusRetrieved, StatusExpired, StatusDeleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown shared file status %q", s)
	}
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
