package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gratia-app/gratia-backend/internal/services"
)

// State is one step of the onboarding flow.
type State string

const (
	StateName    State = "NAME"
	StateAvatar  State = "AVATAR"
	StateInvite  State = "INVITE"
	StateWaiting State = "WAITING"
	StateSuccess State = "SUCCESS"
	StateJournal State = "JOURNAL"
)

var (
	ErrWrongState = errors.New("operation not valid in current state")
	ErrFlowClosed = errors.New("flow is closed")
)

const defaultPollInterval = 3 * time.Second

// Flow is the client-side onboarding state machine:
//
//	NAME → AVATAR → INVITE → WAITING → SUCCESS → JOURNAL
//
// It is a projection of server state, not an authority: every transition
// except pure form navigation is validated by re-reading the pairing
// engine after the mutating call. While in WAITING a poll goroutine
// re-checks match status on a fixed interval; the poll is cancelled the
// moment the flow leaves WAITING and must never fire afterwards.
type Flow struct {
	engine       Engine
	pollInterval time.Duration
	onChange     func(State)

	mu       sync.Mutex
	state    State
	closed   bool
	stopPoll context.CancelFunc
	pollDone chan struct{}
}

type FlowOption func(*Flow)

// WithPollInterval overrides the 3s waiting-room poll interval.
func WithPollInterval(d time.Duration) FlowOption {
	return func(f *Flow) { f.pollInterval = d }
}

// WithStateListener registers a callback invoked (outside the lock) on
// every state change.
func WithStateListener(fn func(State)) FlowOption {
	return func(f *Flow) { f.onChange = fn }
}

// NewFlow derives the initial state from stored truth and, when that
// state is WAITING, starts the poll.
func NewFlow(ctx context.Context, engine Engine, opts ...FlowOption) (*Flow, error) {
	f := &Flow{engine: engine, pollInterval: defaultPollInterval}
	for _, opt := range opts {
		opt(f)
	}

	state, err := f.derive(ctx)
	if err != nil {
		return nil, err
	}
	f.state = state
	if state == StateWaiting {
		f.startPollLocked()
	}
	return f, nil
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SubmitName stores the display name and advances past NAME.
func (f *Flow) SubmitName(ctx context.Context, name string) error {
	if err := f.require(StateName); err != nil {
		return err
	}
	if err := f.engine.SetDisplayName(ctx, name); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// SubmitAvatar stores the uploaded avatar URL and advances past AVATAR.
func (f *Flow) SubmitAvatar(ctx context.Context, url string) error {
	if err := f.require(StateAvatar); err != nil {
		return err
	}
	if err := f.engine.SetAvatarURL(ctx, url); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// SubmitInvite declares the partner target. If the partner had already
// invited us this lands directly in SUCCESS; otherwise WAITING begins
// and the poll starts.
func (f *Flow) SubmitInvite(ctx context.Context, partnerEmail string) error {
	if err := f.require(StateInvite); err != nil {
		return err
	}
	if err := f.engine.RequestPartner(ctx, partnerEmail); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// Withdraw cancels the outstanding invitation from WAITING. This is the
// only user path back to INVITE.
func (f *Flow) Withdraw(ctx context.Context) error {
	if err := f.require(StateWaiting); err != nil {
		return err
	}
	if err := f.engine.RemovePartner(ctx); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// StartJournaling acknowledges the match from SUCCESS. This is the only
// path into the journal view.
func (f *Flow) StartJournaling(ctx context.Context) error {
	if err := f.require(StateSuccess); err != nil {
		return err
	}
	if err := f.engine.Acknowledge(ctx); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// Refresh re-derives the state from stored truth and reconciles the
// poll with it.
func (f *Flow) Refresh(ctx context.Context) error {
	state, err := f.derive(ctx)
	if err != nil {
		return err
	}
	f.setState(state)
	return nil
}

// Close tears the flow down and cancels any running poll.
func (f *Flow) Close() {
	f.mu.Lock()
	f.closed = true
	done := f.stopPollLocked()
	f.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (f *Flow) require(want State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFlowClosed
	}
	if f.state != want {
		return ErrWrongState
	}
	return nil
}

// derive computes the state purely from engine reads.
func (f *Flow) derive(ctx context.Context) (State, error) {
	profile, err := f.engine.Profile(ctx)
	if err != nil {
		return "", err
	}
	if profile.DisplayName == nil || *profile.DisplayName == "" {
		return StateName, nil
	}
	if profile.AvatarURL == nil || *profile.AvatarURL == "" {
		return StateAvatar, nil
	}

	status, err := f.engine.Status(ctx)
	if err != nil {
		return "", err
	}
	if status.State == services.MatchStateMatched {
		if role, ok := status.Relationship.ParticipantOf(profile.ID); ok && status.Relationship.AckOf(role) {
			return StateJournal, nil
		}
		return StateSuccess, nil
	}
	if status.TargetEmail != "" {
		return StateWaiting, nil
	}
	return StateInvite, nil
}

func (f *Flow) setState(next State) {
	f.mu.Lock()
	if f.closed || f.state == next {
		f.mu.Unlock()
		return
	}
	prev := f.state
	f.state = next

	if next == StateWaiting && f.stopPoll == nil {
		f.startPollLocked()
	}
	if next != StateWaiting {
		f.stopPollLocked()
	}
	listener := f.onChange
	f.mu.Unlock()

	slog.Debug("onboarding state changed", "from", prev, "to", next)
	if listener != nil {
		listener(next)
	}
}

// startPollLocked launches the waiting-room poll. Caller holds the lock.
func (f *Flow) startPollLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f.stopPoll = cancel
	f.pollDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(f.pollInterval)
		defer ticker.Stop()
		for {
			f.checkOnce(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// stopPollLocked cancels the poll if one is running and returns its done
// channel. Caller holds the lock.
func (f *Flow) stopPollLocked() chan struct{} {
	if f.stopPoll == nil {
		return nil
	}
	f.stopPoll()
	done := f.pollDone
	f.stopPoll = nil
	f.pollDone = nil
	return done
}

// checkOnce performs one poll iteration. Transitions to SUCCESS only if
// the flow is still in WAITING by the time the answer arrives.
func (f *Flow) checkOnce(ctx context.Context) {
	status, err := f.engine.Status(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("match status poll failed", "error", err)
		}
		return
	}
	if status.State != services.MatchStateMatched {
		return
	}

	f.mu.Lock()
	stillWaiting := f.state == StateWaiting && !f.closed
	f.mu.Unlock()
	if stillWaiting {
		f.setState(StateSuccess)
	}
}
