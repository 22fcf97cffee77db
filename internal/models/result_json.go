package models

import "encoding/json"

type successPayload struct {
	Success bool `json:"success"`
	AuditReport
}

type failurePayload struct {
	Success bool `json:"success"`
	AuditFailure
}

// MarshalJSON flattens the populated variant next to a "success" discriminator.
func (r AuditResult) MarshalJSON() ([]byte, error) {
	if r.Succeeded() {
		report := *r.Report
		if report.Responses == nil {
			report.Responses = []ResponseRecord{}
		}
		if report.Cookies == nil {
			report.Cookies = []Cookie{}
		}
		if report.LocalStorage == nil {
			report.LocalStorage = StorageSnapshot{}
		}
		if report.ResponseHeaders == nil {
			report.ResponseHeaders = map[string]string{}
		}
		return json.Marshal(successPayload{Success: true, AuditReport: report})
	}

	failure := AuditFailure{Code: FailureTransport, Reason: ReasonPrefix + "unknown error"}
	if r.Failure != nil {
		failure = *r.Failure
	}
	return json.Marshal(failurePayload{Success: false, AuditFailure: failure})
}
