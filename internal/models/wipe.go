package models

import (
	"time"
)

// WipeStatus is the terminal status of a sanitization run.
type WipeStatus string

const (
	StatusSuccess            WipeStatus = "Success"
	StatusFailed             WipeStatus = "Failed"
	StatusPartiallyCompleted WipeStatus = "PartiallyCompleted"
)

// WipeRequest describes a sanitization to perform.
type WipeRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	Method     string `json:"method"`
}

// WipeOutcome is the structured result of a completed sanitization run,
// including references to the generated evidence artifacts.
type WipeOutcome struct {
	LogID           string     `json:"log_id"`
	DeviceID        string     `json:"device_id"`
	DeviceName      string     `json:"device_name"`
	Method          string     `json:"method"`
	Status          WipeStatus `json:"status"`
	CompletedAt     time.Time  `json:"completed_at"`
	LogFile         string     `json:"log_file"`
	CertificateFile string     `json:"certificate_file"`
}

// Payload flattens the outcome into the chain payload map. Key set and
// values are fixed here so every recorded wipe hashes the same fields.
func (o *WipeOutcome) Payload() map[string]string {
	return map[string]string{
		"log_id":       o.LogID,
		"device_id":    o.DeviceID,
		"device_name":  o.DeviceName,
		"method":       o.Method,
		"status":       string(o.Status),
		"completed_at": o.CompletedAt.UTC().Format(time.RFC3339Nano),
	}
}

// WipeReceipt is returned to the caller after a wipe has been recorded on
// the chain. Hash fields always come from the real appended block.
type WipeReceipt struct {
	Outcome      *WipeOutcome `json:"outcome"`
	BlockIndex   int64        `json:"block_index"`
	BlockHash    string       `json:"block_hash"`
	PreviousHash string       `json:"previous_hash"`
}

// VerifyReport summarizes a chain integrity check.
type VerifyReport struct {
	OK         bool    `json:"ok"`
	Length     int64   `json:"length"`
	Violations []int64 `json:"violations,omitempty"`
}
