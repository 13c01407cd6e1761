package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peterkuimelis/elementa/internal/log"
)

// DefaultTurnTimeout is the wall-clock budget for one turn's action.
const DefaultTurnTimeout = 12 * time.Second

// errInterrupted aborts a wait when the match is abandoned mid-turn.
var errInterrupted = errors.New("turn interrupted")

// errStepEnded stops the current step after the sink replaced or ended the
// match.
var errStepEnded = errors.New("step ended by sink")

// PlayerController is the interface that local players (terminal, AI, MCP)
// implement. ChooseAction must return when ctx is done.
type PlayerController interface {
	// ChooseAction presents available actions and waits for the player to pick one.
	ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// EventSource is implemented by controllers that stand for a remote engine
// and deliver its events verbatim. Their turns are not timed locally.
type EventSource interface {
	PlayerController

	// NextEvent blocks until the remote side produces its next event.
	NextEvent(ctx context.Context, state *GameState) (Event, error)

	// Rejected is called when a delivered event fails to apply. Returning
	// ErrResynced means the state was replaced from a snapshot.
	Rejected(ctx context.Context, state *GameState, ev Event, cause error) error
}

// EventSink observes every event applied on behalf of a local controller.
type EventSink interface {
	Publish(ctx context.Context, state *GameState, ev Event) error
}

// DuelConfig holds configuration for creating a new duel.
type DuelConfig struct {
	Decks     [2][]Archetype // nil entries use the standard deck
	Logger    log.EventLogger
	Seed      int64 // RNG seed (0 for random)
	NoShuffle bool  // skip deck shuffle (for deterministic tests)
	MaxTurns  int   // stop after this many turns (0 = default limit)
	HandSize  int

	// TurnTimeout bounds each local action; 0 uses DefaultTurnTimeout and
	// a negative value disables the timer.
	TurnTimeout time.Duration

	// PresentationDelay is slept between an action and the end of the turn.
	PresentationDelay time.Duration

	// Sink, if set, is told about every locally decided event.
	Sink EventSink
}

// Duel orchestrates an entire match between two controllers.
type Duel struct {
	State       *GameState
	Controllers [2]PlayerController
	Logger      log.EventLogger

	ctx     context.Context
	cfg     DuelConfig
	abandon chan int
}

// NewDuel creates a new duel from the given config and player controllers.
func NewDuel(cfg DuelConfig, p0, p1 PlayerController) *Duel {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	if cfg.TurnTimeout == 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}

	gs := NewGameState(Setup{
		Seed:      cfg.Seed,
		Decks:     cfg.Decks,
		NoShuffle: cfg.NoShuffle,
		HandSize:  cfg.HandSize,
		MaxTurns:  cfg.MaxTurns,
	})

	d := &Duel{
		State:       gs,
		Controllers: [2]PlayerController{p0, p1},
		Logger:      logger,
		ctx:         context.Background(),
		cfg:         cfg,
		abandon:     make(chan int, 2),
	}
	gs.OnEvent = d.log
	return d
}

// Abandon reports that player left. Safe to call from any goroutine.
func (d *Duel) Abandon(player int) {
	select {
	case d.abandon <- player:
	default:
	}
}

// Run executes the entire duel loop. Returns the winner (0, 1, or -1 for draw).
func (d *Duel) Run(ctx context.Context) (int, error) {
	d.ctx = ctx
	gs := d.State

	if gs.State == StatePreStart {
		if err := gs.Start(); err != nil {
			return -1, err
		}
	}

	for !gs.Over {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		select {
		case p := <-d.abandon:
			gs.Abandon(p)
			continue
		default:
		}
		if err := d.step(); err != nil {
			return gs.Winner, err
		}
	}

	return gs.Winner, nil
}

// step obtains and applies one event for the active side.
func (d *Duel) step() error {
	gs := d.State
	tp := gs.TurnPlayer
	ctrl := d.Controllers[tp]

	if src, ok := ctrl.(EventSource); ok {
		return d.stepRemote(src, tp)
	}

	ev, err := d.choose(ctrl, tp)
	switch {
	case errors.Is(err, ErrPeerLeft):
		gs.Abandon(tp)
		return nil
	case errors.Is(err, ErrResynced), errors.Is(err, errInterrupted):
		return nil
	case err != nil:
		return err
	}

	if err := gs.Apply(ev); err != nil {
		d.log(log.NewDesyncEvent(gs.Turn, gs.Phase(), tp, err.Error()))
		ev = Pass{Player: tp, TimedOut: true}
		if err := gs.Apply(ev); err != nil {
			return err
		}
	}
	if err := d.publish(ev); err != nil {
		return ignoreStepEnded(err)
	}
	if _, passed := ev.(Pass); passed || gs.Over || gs.TurnPlayer != tp {
		return nil
	}

	if err := d.sleep(d.cfg.PresentationDelay); err != nil {
		return err
	}
	return ignoreStepEnded(d.applyLocal(Pass{Player: tp}))
}

func ignoreStepEnded(err error) error {
	if errors.Is(err, errStepEnded) {
		return nil
	}
	return err
}

func (d *Duel) stepRemote(src EventSource, tp int) error {
	gs := d.State
	ev, err := d.waitRemote(src)
	switch {
	case errors.Is(err, ErrPeerLeft):
		gs.Abandon(tp)
		return nil
	case errors.Is(err, errInterrupted):
		return nil
	case errors.Is(err, ErrResynced):
		d.log(log.NewResyncEvent(gs.Turn, gs.Phase()))
		return nil
	case err != nil:
		return err
	}

	applyErr := gs.Apply(ev)
	if applyErr == nil {
		return nil
	}
	d.log(log.NewDesyncEvent(gs.Turn, gs.Phase(), tp, applyErr.Error()))
	switch err := src.Rejected(d.ctx, gs, ev, applyErr); {
	case errors.Is(err, ErrResynced):
		d.log(log.NewResyncEvent(gs.Turn, gs.Phase()))
		return nil
	case errors.Is(err, ErrPeerLeft):
		gs.Abandon(tp)
		return nil
	default:
		return err
	}
}

// waitRemote reads the next remote event, giving way to an abandon signal.
func (d *Duel) waitRemote(src EventSource) (Event, error) {
	ctx, cancel := context.WithCancel(d.ctx)
	defer cancel()

	type result struct {
		ev  Event
		err error
	}
	ch := make(chan result, 1)
	go func() {
		ev, err := src.NextEvent(ctx, d.State)
		ch <- result{ev, err}
	}()

	select {
	case r := <-ch:
		return r.ev, r.err
	case p := <-d.abandon:
		cancel()
		<-ch
		d.Abandon(p)
		return nil, errInterrupted
	case <-d.ctx.Done():
		return nil, d.ctx.Err()
	}
}

// choose asks a local controller for its action under the turn timer. An
// expired timer turns into a timed-out pass.
func (d *Duel) choose(ctrl PlayerController, tp int) (Event, error) {
	gs := d.State
	actions := gs.LegalActions()
	if len(actions) == 0 {
		return nil, fmt.Errorf("no legal actions for P%d", tp+1)
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if d.cfg.TurnTimeout > 0 && !gs.ActionTaken {
		ctx, cancel = context.WithTimeout(d.ctx, d.cfg.TurnTimeout)
	} else {
		ctx, cancel = context.WithCancel(d.ctx)
	}
	defer cancel()

	type result struct {
		action Action
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		a, err := ctrl.ChooseAction(ctx, gs, actions)
		ch <- result{a, err}
	}()

	var r result
	select {
	case r = <-ch:
	case p := <-d.abandon:
		cancel()
		<-ch
		d.Abandon(p)
		return nil, errInterrupted
	}

	if r.err != nil {
		if errors.Is(r.err, context.DeadlineExceeded) && d.ctx.Err() == nil {
			return Pass{Player: tp, TimedOut: true}, nil
		}
		return nil, r.err
	}
	return r.action.Event(), nil
}

// applyLocal applies a locally decided event and publishes it.
func (d *Duel) applyLocal(ev Event) error {
	if err := d.State.Apply(ev); err != nil {
		return err
	}
	return d.publish(ev)
}

// publish hands an applied event to the sink. A sink that replaced the
// state from a snapshot ends the step.
func (d *Duel) publish(ev Event) error {
	if d.cfg.Sink == nil {
		return nil
	}
	err := d.cfg.Sink.Publish(d.ctx, d.State, ev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrResynced):
		d.log(log.NewResyncEvent(d.State.Turn, d.State.Phase()))
		return errStepEnded
	case errors.Is(err, ErrPeerLeft):
		d.State.Abandon(d.State.Opponent(ev.Actor()))
		return errStepEnded
	default:
		return fmt.Errorf("publish event: %w", err)
	}
}

func (d *Duel) sleep(delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-d.ctx.Done():
		return d.ctx.Err()
	}
}

// log emits a game event through the logger and notifies both players.
func (d *Duel) log(event log.GameEvent) {
	d.Logger.Log(event)
	// Notify controllers (ignore errors for notifications)
	for i := 0; i < 2; i++ {
		if d.Controllers[i] != nil {
			_ = d.Controllers[i].Notify(d.ctx, event)
		}
	}
}
