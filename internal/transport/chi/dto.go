package chi

import (
	"github.com/spotive-cloud/discovery/internal/domain/category"
	domdisc "github.com/spotive-cloud/discovery/internal/domain/discover"
)

// errorCode identifies a failure class to API clients.
type errorCode string

const (
	codeBadRequest            errorCode = "bad_request"
	codeValidationFailed      errorCode = "validation_failed"
	codeVenueNotFound         errorCode = "venue_not_found"
	codeNoCategoryMatch       errorCode = "no_category_match"
	codeEmptyResultSet        errorCode = "empty_result_set"
	codeGuestNotFound         errorCode = "guest_not_found"
	codeClassifierUnavailable errorCode = "classifier_unavailable"
	codeInternalError         errorCode = "internal_error"
)

type discoverRequest struct {
	Identity string `json:"identity"`
	Interest string `json:"interest"`
	VenueID  string `json:"venue_id,omitempty"`
}

type errorResponse struct {
	Code       errorCode      `json:"code"`
	Message    string         `json:"message"`
	Interest   string         `json:"interest,omitempty"`
	Categories []category.Tag `json:"categories,omitempty"`
}

type backlogResponse struct {
	Identity  string             `json:"identity"`
	Envelopes []domdisc.Envelope `json:"envelopes"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
