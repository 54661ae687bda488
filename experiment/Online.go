package experiment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/mazemouse/agent/tabular/qlearning"
	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
	"github.com/samuelfneumann/mazemouse/environment/maze"
	"github.com/samuelfneumann/mazemouse/experiment/checkpointer"
	"github.com/samuelfneumann/mazemouse/experiment/leaderboard"
	"github.com/samuelfneumann/mazemouse/experiment/tracker"
	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// StepResult describes a single step of an Online experiment
type StepResult struct {
	Key      state.Key    `json:"key"`
	Action   state.Action `json:"action"`
	From     state.Point  `json:"from"`
	To       state.Point  `json:"to"`
	Reward   float64      `json:"reward"`
	Terminal bool         `json:"terminal"`
	End      string       `json:"end"`

	// Episode is the generation the step was taken in and Steps the
	// number of steps taken in that episode so far
	Episode int     `json:"episode"`
	Steps   int     `json:"steps"`
	Epsilon float64 `json:"epsilon"`
	Manual  bool    `json:"manual"`
	Err     string  `json:"error,omitempty"`
}

// Ended returns whether the step ended its episode
func (s StepResult) Ended() bool {
	return s.End != ts.Unended.String()
}

var _ Experiment = (*Online)(nil)

// observer encodes the agent's current position as a state
type observer interface {
	Observe() (state.Key, error)
}

// Online is an Experiment that runs a Q-Learning agent online in a
// maze. A single goroutine should drive the experiment with Step, Run,
// RunSteps, or RunEpisode; Pause may be called from any goroutine.
type Online struct {
	env      *maze.Maze
	observer observer
	agent    *qlearning.QLearning
	config   Config

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	leaderboard   *leaderboard.Leaderboard
	listeners     []func(StepResult)
	logger        *log.Logger

	generation    int
	episodeReturn float64
	manual        atomic.Bool
	paused        atomic.Bool
}

// NewOnline creates and returns a new online experiment on a given
// maze with a given agent. The trackers t determine what data is
// tracked and saved.
func NewOnline(e *maze.Maze, a *qlearning.QLearning, c Config,
	t ...tracker.Tracker) (*Online, error) {
	size := c.LeaderboardSize
	if size == 0 {
		size = DefaultLeaderboardSize
	}
	board, err := leaderboard.New(size)
	if err != nil {
		return nil, fmt.Errorf("newOnline: %v", err)
	}

	o := &Online{
		env:         e,
		observer:    e,
		agent:       a,
		config:      c,
		trackers:    t,
		leaderboard: board,
		logger:      log.New(os.Stderr, "mazemouse: ", log.LstdFlags),
	}

	if c.CheckpointEvery > 0 {
		if err := os.MkdirAll(c.CheckpointDir, 0o755); err != nil {
			return nil, fmt.Errorf("newOnline: could not create checkpoint "+
				"directory: %w", err)
		}
		filename := checkpointer.FilenameEnumerator(0, c.CheckpointDir,
			"qtable", ".json")
		check, err := checkpointer.NewNEpisode(c.CheckpointEvery, a.Table(),
			filename)
		if err != nil {
			return nil, fmt.Errorf("newOnline: %v", err)
		}
		o.RegisterCheckpointer(check)
	}

	o.track(e.CurrentTimeStep())
	return o, nil
}

// SetLogger sets the logger that the experiment and its agent report
// to
func (o *Online) SetLogger(l *log.Logger) {
	o.logger = l
	o.agent.SetLogger(l)
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer registers a checkpointer.Checkpointer with the
// experiment
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// AddListener registers f to be called with the result of every step
func (o *Online) AddListener(f func(StepResult)) {
	o.listeners = append(o.listeners, f)
}

// Step runs a single observe, act, learn cycle. If the step ends the
// episode, the episode is finalized and the maze reset before Step
// returns. Failures are logged and reported in the StepResult.
func (o *Online) Step() StepResult {
	if o.manual.Load() {
		return StepResult{
			Episode: o.generation,
			Err:     "step: manual control enabled",
		}
	}
	return o.guardedStep(false, 0)
}

// ManualStep runs a single cycle of the experiment with action a in
// place of the agent's chosen action. The agent still learns from the
// transition.
func (o *Online) ManualStep(a state.Action) StepResult {
	if !a.Valid() {
		return StepResult{
			Episode: o.generation,
			Err:     fmt.Sprintf("manualStep: invalid action %d", a),
		}
	}
	return o.guardedStep(true, a)
}

// guardedStep runs a step, recovering from any panic so that no
// failure propagates out of Step
func (o *Online) guardedStep(manual bool, a state.Action) (
	result StepResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("step: recovered from failure: %v", r)
			result = StepResult{
				Episode: o.generation,
				Manual:  manual,
				Err:     fmt.Sprint(r),
			}
			o.recoverEpisode()
		}
	}()

	result = o.step(manual, a)
	for _, f := range o.listeners {
		f(result)
	}
	return result
}

// step runs a single cycle of the experiment
func (o *Online) step(manual bool, action state.Action) StepResult {
	prev := o.env.CurrentTimeStep()
	learn := true

	key, err := o.observer.Observe()
	switch {
	case err != nil:
		// No update is made from a state that could not be observed
		learn = false
		if !manual {
			o.logger.Printf("step: %v, selecting a random action", err)
			action = o.agent.RandomAction()
		}
	case !manual:
		action = o.agent.SelectAction(key)
	}

	next, last, err := o.env.Step(action)
	if err != nil {
		o.logger.Printf("step: %v", err)
		o.restartEpisode()
		return StepResult{
			Key:     key,
			Action:  action,
			From:    prev.Position,
			Episode: o.generation,
			Manual:  manual,
			Err:     err.Error(),
		}
	}

	if learn {
		transition := ts.NewTransition(prev, action, next)
		if err := o.agent.Learn(transition); err != nil {
			o.logger.Printf("step: could not learn: %v", err)
		}
	}

	o.episodeReturn += next.Reward
	o.track(next)
	o.checkpoint(next)

	result := StepResult{
		Key:      key,
		Action:   action,
		From:     prev.Position,
		To:       next.Position,
		Reward:   next.Reward,
		Terminal: next.Terminal(),
		End:      next.EndType().String(),
		Episode:  o.generation,
		Steps:    next.Number,
		Epsilon:  o.agent.Epsilon(),
		Manual:   manual,
	}

	if last {
		o.endEpisode(next)
	}
	return result
}

// endEpisode finalizes the episode ending with step last and begins a
// new episode
func (o *Online) endEpisode(last ts.TimeStep) {
	if last.Terminal() {
		entry, ok := o.leaderboard.Offer(o.generation, last.Number,
			o.episodeReturn, o.agent.Table())
		if ok {
			if best, _ := o.leaderboard.Best(); best.ID == entry.ID {
				o.logger.Printf("new best episode: %v", entry)
			}
		}
	}

	o.generation++
	o.agent.EndEpisode()
	o.restartEpisode()
}

// recoverEpisode restarts the episode after a failed step. A failure
// while restarting is logged and leaves the maze as it is.
func (o *Online) recoverEpisode() {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("step: could not restart episode: %v", r)
		}
	}()
	o.restartEpisode()
}

// restartEpisode resets the maze to the start of a new episode
func (o *Online) restartEpisode() {
	o.episodeReturn = 0
	step, err := o.env.Reset()
	if err != nil {
		o.logger.Printf("restartEpisode: %v", err)
		return
	}
	o.track(step)
}

// RunEpisode runs until the current episode ends and returns whether
// the episode limit has been reached
func (o *Online) RunEpisode() bool {
	generation := o.generation
	for o.generation == generation {
		if result := o.Step(); result.Err != "" && o.manual.Load() {
			break
		}
	}
	return o.Done()
}

// RunSteps runs n steps and returns their results
func (o *Online) RunSteps(n int) []StepResult {
	results := make([]StepResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, o.Step())
	}
	return results
}

// Run runs the experiment until the episode limit is reached, ctx is
// cancelled, manual control is enabled, or Pause is called. Calling Run
// again resumes the experiment from the step at which it stopped.
func (o *Online) Run(ctx context.Context) error {
	o.paused.Store(false)

	for !o.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.paused.Load() || o.manual.Load() {
			return nil
		}

		result := o.Step()
		if result.Ended() && o.config.EpisodePause > 0 {
			timer := time.NewTimer(o.config.EpisodePause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}

// Pause stops Run at the next step boundary
func (o *Online) Pause() {
	o.paused.Store(true)
}

// Paused returns whether the experiment has been paused
func (o *Online) Paused() bool {
	return o.paused.Load()
}

// Done returns whether the episode limit has been reached
func (o *Online) Done() bool {
	return o.config.MaxEpisodes > 0 && o.generation >= o.config.MaxEpisodes
}

// SetManual enables or disables manual control. While enabled, the
// experiment only steps through ManualStep.
func (o *Online) SetManual(manual bool) {
	o.manual.Store(manual)
}

// Manual returns whether manual control is enabled
func (o *Online) Manual() bool {
	return o.manual.Load()
}

// ResetAgent restarts the current episode with new action values. If
// reloadBest is true and a best episode is known, the action values
// from the end of that episode are restored; otherwise all learning is
// discarded and the exploration rate restored.
func (o *Online) ResetAgent(reloadBest bool) {
	best, ok := o.leaderboard.Best()
	if reloadBest && ok {
		if err := o.agent.Table().Import(best.Table().Export()); err != nil {
			o.logger.Printf("resetAgent: could not restore best table: %v",
				err)
		}
	} else {
		if reloadBest {
			o.logger.Printf("resetAgent: no best episode, resetting agent")
		}
		o.agent.Reset()
		o.leaderboard.Reset()
	}
	o.restartEpisode()
}

// NewMaze replaces the maze with a newly generated maze of the
// configured size and starts a new episode. Action values are kept
// since states are relative to the goal. The leaderboard is cleared.
func (o *Online) NewMaze() error {
	o.episodeReturn = 0
	step, err := o.env.Regenerate(o.config.EnvConf.Width,
		o.config.EnvConf.Height)
	if err != nil {
		return fmt.Errorf("newMaze: %v", err)
	}
	o.leaderboard.Reset()
	o.track(step)
	return nil
}

// LoadTable replaces the agent's action values with those saved in
// filename. On failure the current action values are kept, the error
// is logged, and false is returned.
func (o *Online) LoadTable(filename string) bool {
	if err := o.agent.Table().Load(filename); err != nil {
		if qtable.IsMalformed(err) {
			o.logger.Printf("loadTable: malformed table in %v: %v", filename,
				err)
		} else {
			o.logger.Printf("loadTable: %v", err)
		}
		return false
	}
	return true
}

// SaveTable saves the agent's action values to filename
func (o *Online) SaveTable(filename string) error {
	if err := o.agent.Table().Save(filename); err != nil {
		return fmt.Errorf("saveTable: %w", err)
	}
	return nil
}

// Table returns a snapshot of the agent's action values
func (o *Online) Table() *qtable.Table {
	return o.agent.Table().Clone()
}

// ValueMap returns the greedy value max Q(s) of every cell of the maze
// as a height × width matrix. Wall cells are NaN.
func (o *Online) ValueMap() *mat.Dense {
	grid := o.env.Grid()
	table := o.agent.Table()
	values := mat.NewDense(grid.Height(), grid.Width(), nil)

	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if grid.IsWall(x, y) {
				values.Set(y, x, math.NaN())
				continue
			}
			p := state.Point{X: x, Y: y}
			key := state.Encode(p, grid.Goal(), grid.Walls(p))
			values.Set(y, x, table.Max(key))
		}
	}
	return values
}

// Environment returns the maze the experiment runs in
func (o *Online) Environment() *maze.Maze {
	return o.env
}

// Agent returns the agent of the experiment
func (o *Online) Agent() *qlearning.QLearning {
	return o.agent
}

// Leaderboard returns the best episodes of the experiment
func (o *Online) Leaderboard() *leaderboard.Leaderboard {
	return o.leaderboard
}

// Generation returns the number of completed episodes
func (o *Online) Generation() int {
	return o.generation
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	var errs []error
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// checkpoint passes the current timestep to each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			o.logger.Printf("checkpoint: %v", err)
		}
	}
}
