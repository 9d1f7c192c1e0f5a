package enums

import (
	"fmt"
	"strings"
)

// RequestType represents the canonical moderation request types. The value is
// immutable once a request row is created.
type RequestType string

const (
	RequestTypeStoreSponsorship   RequestType = "STORE_SPONSORSHIP"
	RequestTypeProductSponsorship RequestType = "PRODUCT_SPONSORSHIP"
	RequestTypeBlueBadge          RequestType = "BLUE_BADGE"
	RequestTypeUserComplaint      RequestType = "USER_COMPLAINT"
	RequestTypeNewProduct         RequestType = "NEW_PRODUCT"
	RequestTypeProductApproval    RequestType = "PRODUCT_APPROVAL"
)

var validRequestTypes = []RequestType{
	RequestTypeStoreSponsorship,
	RequestTypeProductSponsorship,
	RequestTypeBlueBadge,
	RequestTypeUserComplaint,
	RequestTypeNewProduct,
	RequestTypeProductApproval,
}

// String implements fmt.Stringer.
func (t RequestType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known RequestType.
func (t RequestType) IsValid() bool {
	for _, candidate := range validRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsSponsorship reports whether the type carries amount/duration semantics.
func (t RequestType) IsSponsorship() bool {
	return strings.Contains(string(t), "SPONSORSHIP")
}

// IsProductReview reports whether the type tracks a product awaiting moderation.
func (t RequestType) IsProductReview() bool {
	return t == RequestTypeNewProduct || t == RequestTypeProductApproval
}

// ParseRequestType converts raw input into a RequestType.
func ParseRequestType(value string) (RequestType, error) {
	for _, candidate := range validRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request type %q", value)
}

// RequestStatus captures the moderation lifecycle. Approved and rejected are
// terminal; rows are retained after the transition.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the request lifecycle.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
