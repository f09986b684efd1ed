// Package telemetry records per-tick gait telemetry as JSON lines, one
// session per recorder.
package telemetry

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
)

// Sample is one tick of gait telemetry.
type Sample struct {
	Session         string  `json:"session"`
	ElapsedMs       int64   `json:"elapsed_ms"`
	Tick            uint64  `json:"tick"`
	Phase           string  `json:"phase"`
	StanceFoot      int     `json:"stance_foot"`
	CycleCounter    int     `json:"cycle_counter"`
	FootLift        float64 `json:"foot_lift"`
	Pitch           float64 `json:"pitch"`
	Roll            float64 `json:"roll"`
	PitchCorrection float64 `json:"pitch_correction"`
	RollCorrection  float64 `json:"roll_correction"`
}

// Recorder writes samples to w, stamping each with the session ID and the
// elapsed time since the recorder was created. Write errors are dropped;
// telemetry must never stall the control loop.
type Recorder struct {
	enc     *json.Encoder
	session string
	start   time.Time
}

// NewRecorder starts a new session writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{
		enc:     json.NewEncoder(w),
		session: uuid.NewString(),
		start:   time.Now(),
	}
}

// Session returns the session ID stamped on every sample.
func (r *Recorder) Session() string { return r.session }

// Record writes one sample.
func (r *Recorder) Record(s Sample) {
	s.Session = r.session
	s.ElapsedMs = time.Since(r.start).Milliseconds()
	_ = r.enc.Encode(s)
}
