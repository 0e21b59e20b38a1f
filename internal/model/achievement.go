package model

// Achievement is the live unlock state of one achievement, read from the
// local runtime. It is never cached.
type Achievement struct {
	ID          string `json:"achievement_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// ResetStatus is the per-achievement result of a bulk reset
type ResetStatus string

const (
	ResetCleared       ResetStatus = "cleared"
	ResetAlreadyLocked ResetStatus = "already_locked"
	ResetFailed        ResetStatus = "failed"
)

// ResetOutcome records what happened to one achievement during a reset
type ResetOutcome struct {
	AchievementID string      `json:"achievement_id"`
	Status        ResetStatus `json:"status"`
	Err           error       `json:"-"`
}

// FailureKind returns the error kind for failed outcomes, empty otherwise
func (o ResetOutcome) FailureKind() string {
	if o.Status != ResetFailed {
		return ""
	}
	return ErrorKind(o.Err)
}

// ResetReport is the result of clearing every achievement of one app
type ResetReport struct {
	AppID    AppID          `json:"appid"`
	Outcomes []ResetOutcome `json:"outcomes"`
}

// Failed returns the outcomes that did not succeed
func (r *ResetReport) Failed() []ResetOutcome {
	var failed []ResetOutcome
	for _, o := range r.Outcomes {
		if o.Status == ResetFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Count returns how many outcomes have the given status
func (r *ResetReport) Count(status ResetStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
