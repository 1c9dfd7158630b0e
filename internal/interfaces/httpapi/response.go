package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "fantasy-contest"
)

// envelope follows the Google JSON style guide: exactly one of data or error.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalClass = errorClass{http.StatusInternalServerError, "internalError", "INTERNAL"}

// errorClasses is checked in order; the first sentinel matched wins.
var errorClasses = []struct {
	sentinels []error
	class     errorClass
}{
	{[]error{usecase.ErrInvalidInput}, errorClass{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{[]error{usecase.ErrNotFound}, errorClass{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{[]error{usecase.ErrUnauthorized}, errorClass{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{[]error{usecase.ErrDependencyUnavailable, usecase.ErrTransientFetch}, errorClass{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{[]error{usecase.ErrNoParticipants, usecase.ErrSettlementPrecondition}, errorClass{http.StatusConflict, "failedPrecondition", "FAILED_PRECONDITION"}},
	{[]error{usecase.ErrDataIntegrity}, errorClass{http.StatusInternalServerError, "dataIntegrity", "DATA_LOSS"}},
	{[]error{usecase.ErrFinancialTransaction}, errorClass{http.StatusInternalServerError, "financialTransaction", "INTERNAL"}},
}

func classify(ctx context.Context, err error) errorClass {
	_, span := startSpan(ctx, "httpapi.classify")
	defer span.End()

	for _, rule := range errorClasses {
		for _, sentinel := range rule.sentinels {
			if crerr.Is(err, sentinel) {
				return rule.class
			}
		}
	}
	return internalClass
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError renders err with the status of its class. Messages of 5xx
// errors other than dependency outages are not exposed to clients.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classify(ctx, err)
	msg := err.Error()
	if class.HTTPStatus >= http.StatusInternalServerError && class.HTTPStatus != http.StatusServiceUnavailable {
		msg = http.StatusText(class.HTTPStatus)
	}
	writeClass(ctx, w, class, msg)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeClass(ctx, w, internalClass, "internal server error")
}

func writeClass(ctx context.Context, w http.ResponseWriter, class errorClass, msg string) {
	writeJSON(ctx, w, class.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.HTTPStatus,
			Message: msg,
			Status:  class.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: class.Reason, Message: msg}},
		},
	})
}
