package game

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ReplayStep is one applied action and the checksum of the state it produced.
type ReplayStep struct {
	Player   string
	Action   Action
	Checksum string
}

// Replay is a recorded game: the arguments that dealt it plus every applied action.
type Replay struct {
	GameID       string
	Players      []string
	Seed         uint64
	Initial      string
	Steps        []ReplayStep
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay starts a replay from a freshly dealt state.
func NewReplay(initial *GameState) *Replay {
	return &Replay{
		GameID:  initial.gameID,
		Players: initial.turn.Players(),
		Seed:    initial.seed,
		Initial: Checksum(initial),
	}
}

// Record appends an applied action and the state it produced.
func (r *Replay) Record(player string, action Action, after *GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Steps = append(r.Steps, ReplayStep{
		Player:   player,
		Action:   cloneAction(action),
		Checksum: Checksum(after),
	})
}

// Start rewinds playback to the first step.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the next step and advances playback.
func (r *Replay) Next() (ReplayStep, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Steps) {
		step := r.Steps[r.CurrentIndex]
		r.CurrentIndex++
		return step, true
	}
	return ReplayStep{}, false
}

// Previous steps playback back by one and returns that step.
func (r *Replay) Previous() (ReplayStep, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Steps[r.CurrentIndex], true
	}
	return ReplayStep{}, false
}

// Size returns the number of recorded steps.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Steps)
}

// StepAt returns the step at index.
func (r *Replay) StepAt(index int) (ReplayStep, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.Steps) {
		return r.Steps[index], true
	}
	return ReplayStep{}, false
}

// ReplayDivergence reports the first step whose re-run state differs from the recording.
// Index -1 means the dealt state itself differs.
type ReplayDivergence struct {
	Index int
	Want  string
	Got   string
}

func (d *ReplayDivergence) Error() string {
	if d.Index < 0 {
		return fmt.Sprintf("replay diverged at deal: want %s, got %s", d.Want, d.Got)
	}
	return fmt.Sprintf("replay diverged at step %d: want %s, got %s", d.Index, d.Want, d.Got)
}

// Verify deals the recorded game again with e and re-applies every step, returning the
// final state. It fails with *ReplayDivergence on the first checksum mismatch, or with
// the error Apply returned for a step that no longer applies.
func (e *Engine) Verify(r *Replay) (*GameState, error) {
	r.mu.RLock()
	steps := slices.Clone(r.Steps)
	r.mu.RUnlock()

	s, err := e.NewGame(r.GameID, r.Players, r.Seed)
	if err != nil {
		return nil, fmt.Errorf("deal replay %s: %w", r.GameID, err)
	}
	if got := Checksum(s); got != r.Initial {
		return nil, &ReplayDivergence{Index: -1, Want: r.Initial, Got: got}
	}
	for i, step := range steps {
		s, err = e.Apply(s, step.Player, step.Action)
		if err != nil {
			return nil, fmt.Errorf("replay step %d (%s): %w", i, step.Action, err)
		}
		if got := Checksum(s); got != step.Checksum {
			return nil, &ReplayDivergence{Index: i, Want: step.Checksum, Got: got}
		}
	}
	return s, nil
}

func cloneAction(a Action) Action {
	a.Group = slices.Clone(a.Group)
	return a
}

// ReplayRecorder keeps replays for several running games.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
}

// NewReplayRecorder creates a recorder. A nil logger disables logging.
func NewReplayRecorder(logger *zap.Logger) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
	}
}

// StartRecording begins recording the game dealt as initial.
func (rr *ReplayRecorder) StartRecording(initial *GameState) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[initial.gameID] = NewReplay(initial)
	rr.enabled[initial.gameID] = true

	rr.logger.Info("started replay recording",
		zap.String("game_id", initial.gameID),
	)
}

// StopRecording stops recording a game but keeps what was recorded.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false

	rr.logger.Info("stopped replay recording",
		zap.String("game_id", gameID),
	)
}

// Record appends a step when recording is enabled for after's game.
func (rr *ReplayRecorder) Record(player string, action Action, after *GameState) {
	rr.mu.RLock()
	enabled := rr.enabled[after.gameID]
	replay := rr.replays[after.gameID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}

	replay.Record(player, action, after)

	rr.logger.Debug("recorded replay step",
		zap.String("game_id", after.gameID),
		zap.Int("step_count", replay.Size()),
	)
}

// GetReplay returns the replay for a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// ClearReplay drops a replay.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)

	rr.logger.Debug("cleared replay from memory",
		zap.String("game_id", gameID),
	)
}

// IsRecording reports whether recording is enabled for a game.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
