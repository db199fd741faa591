package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Submission is the bundle of material one pipeline run evaluates.
// It is created once per inbound request and never mutated afterwards;
// exactly one pipeline run owns it.
type Submission struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	SlideDocument []byte `json:"-"`
	SlideName     string `json:"slide_name"`
	Audio         []byte `json:"-"`
	AudioName     string `json:"audio_name"`
	Transcript    string `json:"transcript"`
	NotifyAddress string `json:"notify_address,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
}

// NewSubmissionID returns a random 16-hex-char submission identifier.
func NewSubmissionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in much deeper trouble;
		// fall back to a timestamp so the pipeline can still label events.
		return hex.EncodeToString([]byte(time.Now().Format("150405.000")))[:16]
	}
	return hex.EncodeToString(b[:])
}
