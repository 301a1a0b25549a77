package reward

import (
	"context"
	"math"
	"sync"

	"github.com/verte-zerg/tuiread/internal/model"
)

// CompleteProgress is the progress percentage that unlocks the reward.
const CompleteProgress = 100.0

// Claimer performs the external claim call.
type Claimer interface {
	ClaimReward(ctx context.Context, subjectID string) (model.ClaimResult, error)
}

// ChangeFunc observes state transitions.
type ChangeFunc func(from, to State)

// Model tracks reading progress and the claim state for one subject.
type Model struct {
	mu        sync.Mutex
	subjectID string
	amount    Amount
	progress  float64
	state     State
	collected float64
	onChange  []ChangeFunc
}

// NewModel creates a model in NotEligible.
func NewModel(subjectID string, amount Amount) *Model {
	return &Model{
		subjectID: subjectID,
		amount:    amount,
		state:     NotEligible,
	}
}

// SubjectID returns the subject the reward belongs to.
func (m *Model) SubjectID() string { return m.subjectID }

// Amount returns the reward amount.
func (m *Model) Amount() Amount { return m.amount }

// State returns the current state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Progress returns the clamped reading progress.
func (m *Model) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Collected returns the amount credited by the successful claim.
func (m *Model) Collected() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collected
}

// CanClaim reports whether a claim may start.
func (m *Model) CanClaim() bool {
	return m.State() == Eligible
}

// OnChange registers fn for every transition. Callbacks run outside the lock.
func (m *Model) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// SetProgress records reading progress. Values are clamped to [0,100] and
// never decrease. Reaching 100 makes the reward eligible.
func (m *Model) SetProgress(pct float64) State {
	if math.IsNaN(pct) {
		return m.State()
	}
	pct = math.Max(0, math.Min(CompleteProgress, pct))

	m.mu.Lock()
	if pct > m.progress {
		m.progress = pct
	}
	from := m.state
	if m.progress >= CompleteProgress && m.state == NotEligible {
		m.state = Eligible
	}
	to := m.state
	m.mu.Unlock()

	m.notify(from, to)
	return to
}

// SetComplete is the external reading-complete signal.
func (m *Model) SetComplete(done bool) State {
	if !done {
		return m.State()
	}
	return m.SetProgress(CompleteProgress)
}

// Restore puts the model in Claimed for a subject claimed in an earlier
// session. It is ignored while a claim is in flight.
func (m *Model) Restore(collected float64) {
	m.mu.Lock()
	from := m.state
	if from == Claiming {
		m.mu.Unlock()
		return
	}
	m.progress = CompleteProgress
	m.state = Claimed
	m.collected = collected
	m.mu.Unlock()
	m.notify(from, Claimed)
}

// Begin moves Eligible to Claiming. It returns false, leaving the state
// unchanged, in any other state.
func (m *Model) Begin() bool {
	m.mu.Lock()
	if m.state != Eligible {
		m.mu.Unlock()
		return false
	}
	m.state = Claiming
	m.mu.Unlock()
	m.notify(Eligible, Claiming)
	return true
}

// Finish completes an in-flight claim. A failed or rejected claim reverts to
// Eligible and is returned as a *ClaimError.
func (m *Model) Finish(res model.ClaimResult, err error) error {
	m.mu.Lock()
	if m.state != Claiming {
		m.mu.Unlock()
		return ErrNoClaimInFlight
	}
	if err == nil && !res.Success {
		err = ErrClaimRejected
	}
	if err != nil {
		m.state = Eligible
		m.mu.Unlock()
		m.notify(Claiming, Eligible)
		return &ClaimError{SubjectID: m.subjectID, Err: err}
	}
	m.state = Claimed
	m.collected = res.AmountCollected
	m.mu.Unlock()
	m.notify(Claiming, Claimed)
	return nil
}

// Claim runs a full claim against c. Only one claim per model can be in
// flight; concurrent callers get ErrNotClaimable without reaching c.
func (m *Model) Claim(ctx context.Context, c Claimer) (model.ClaimResult, error) {
	if !m.Begin() {
		return model.ClaimResult{}, ErrNotClaimable
	}
	res, err := c.ClaimReward(ctx, m.subjectID)
	if ferr := m.Finish(res, err); ferr != nil {
		return res, ferr
	}
	return res, nil
}

func (m *Model) notify(from, to State) {
	if from == to {
		return
	}
	m.mu.Lock()
	fns := append([]ChangeFunc(nil), m.onChange...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(from, to)
	}
}
