// Package model defines the data structures used throughout the application.
package model

import "time"

// Case is a stored definition of an outbound HTTP request plus the outcome
// of its most recent execution.
//
// ResponseCode and ResponseBody are pointers because they are absent until
// the case has been dispatched at least once. Each dispatch overwrites them
// with the latest outcome — there is no history.
//
// Method and Category are open strings: any value can be stored, and only
// the dispatcher cares whether the method is actually executable.
type Case struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"user_id"`
	Title          string    `json:"title"`
	Host           string    `json:"host"`
	URI            string    `json:"uri"`
	Method         string    `json:"method"`
	RequestBody    string    `json:"request_body"`
	ExpectedResult string    `json:"expected_result"`
	Category       string    `json:"category"`
	Used           bool      `json:"used"`
	ResponseCode   *string   `json:"response_code,omitempty"`
	ResponseBody   *string   `json:"response_body,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
