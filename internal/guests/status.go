package guests

// Status is the guest check-in state. The only legal forward transition is
// NOT_ARRIVED -> CHECKED_IN; reversal exists solely as the audited
// administrative undo, never as an automatic transition.
type Status string

const (
	StatusNotArrived Status = "NOT_ARRIVED"
	StatusCheckedIn  Status = "CHECKED_IN"
)

// IsValid checks if the status is a known state
func (s Status) IsValid() bool {
	switch s {
	case StatusNotArrived, StatusCheckedIn:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanCheckIn reports whether a check-in transition is legal from this state
func (s Status) CanCheckIn() bool {
	return s == StatusNotArrived
}

// IsCheckedIn reports whether the guest has arrived
func (s Status) IsCheckedIn() bool {
	return s == StatusCheckedIn
}
