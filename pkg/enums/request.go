package enums

import "fmt"

// RequestStatus maps to the request_status enum in Postgres.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusReturned  RequestStatus = "returned"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusCancelled,
	RequestStatusReturned,
}

// ActiveRequestStatuses hold, or may hold, an assigned asset.
var ActiveRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical request_status enum.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the request is pending or approved.
func (s RequestStatus) IsActive() bool {
	return s == RequestStatusPending || s == RequestStatusApproved
}

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusCancelled || s == RequestStatusReturned
}

// ParseRequestStatus converts raw input into RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// ReturnCondition maps to the return_condition enum in Postgres.
type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "good"
	ReturnConditionFair    ReturnCondition = "fair"
	ReturnConditionDamaged ReturnCondition = "damaged"
	ReturnConditionLost    ReturnCondition = "lost"
)

var validReturnConditions = []ReturnCondition{
	ReturnConditionGood,
	ReturnConditionFair,
	ReturnConditionDamaged,
	ReturnConditionLost,
}

// String implements fmt.Stringer.
func (c ReturnCondition) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical return_condition enum.
func (c ReturnCondition) IsValid() bool {
	for _, candidate := range validReturnConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseReturnCondition converts raw input into ReturnCondition.
func ParseReturnCondition(value string) (ReturnCondition, error) {
	for _, candidate := range validReturnConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return condition %q", value)
}
