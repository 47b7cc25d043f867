// Package triage orders waiting patients by urgency and arrival.
package triage

import "fmt"

// AdmissionRecord is one waiting patient. Lower Urgency is served first;
// ArrivalSequence breaks ties first-come-first-served.
type AdmissionRecord struct {
	SubjectName     string `json:"subject_name"`
	Urgency         int    `json:"urgency"`
	ArrivalSequence uint64 `json:"arrival_seq"`
}

// Less reports whether r is served before other.
func (r AdmissionRecord) Less(other AdmissionRecord) bool {
	if r.Urgency != other.Urgency {
		return r.Urgency < other.Urgency
	}
	return r.ArrivalSequence < other.ArrivalSequence
}

// String renders the listing form, e.g. "Alice (Priority 3)".
func (r AdmissionRecord) String() string {
	return fmt.Sprintf("%s (Priority %d)", r.SubjectName, r.Urgency)
}
