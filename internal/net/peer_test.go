package net

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/room"
)

func startedState(t *testing.T, seed int64) *game.GameState {
	t.Helper()
	gs := game.NewGameState(game.Setup{Seed: seed})
	if err := gs.Start(); err != nil {
		t.Fatal(err)
	}
	return gs
}

func snapshotJSON(t *testing.T, gs *game.GameState) []byte {
	t.Helper()
	data, err := gs.MarshalSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// TestLANDuelStaysInSync plays a full AI-vs-AI match across the in-process
// relay and expects both engines to end in the same state.
func TestLANDuelStaysInSync(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	relay := newMemRelay(t, room.Config{CodeMin: 123456, CodeMax: 123456})
	hostT := relay.connect("host")
	guestT := relay.connect("guest")

	session := func(code string, aiSeed int64) *Session {
		return &Session{
			Code:        code,
			Local:       func(seat int) game.PlayerController { return game.NewAIController(seat, aiSeed, 0) },
			TurnTimeout: -1,
			MaxTurns:    200,
		}
	}

	type outcome struct {
		res Result
		err error
	}
	hostDone := make(chan outcome, 1)
	go func() {
		res, err := session("", 11).Play(ctx, hostT)
		hostDone <- outcome{res, err}
	}()

	for relay.manager.Count() == 0 {
		time.Sleep(time.Millisecond)
	}
	guestRes, guestErr := session(" 123 456 ", 22).Play(ctx, guestT)
	host := <-hostDone

	if host.err != nil || guestErr != nil {
		t.Fatalf("host err=%v guest err=%v", host.err, guestErr)
	}
	if host.res.Role != room.RoleHost || guestRes.Role != room.RoleGuest {
		t.Errorf("roles: host=%s guest=%s", host.res.Role, guestRes.Role)
	}
	if host.res.Winner != guestRes.Winner || host.res.Text != guestRes.Text {
		t.Errorf("results differ: host %q guest %q", host.res.Text, guestRes.Text)
	}
	if a, b := snapshotJSON(t, host.res.State), snapshotJSON(t, guestRes.State); !bytes.Equal(a, b) {
		t.Errorf("final states differ\nhost  %s\nguest %s", a, b)
	}
	t.Logf("LAN duel: %s after %d turns", host.res.Text, host.res.State.Turn)
}

// TestGuestRequestsResync diverges the guest, lets it reject a host event
// and expects the host's snapshot to bring it back.
func TestGuestRequestsResync(t *testing.T) {
	hostT, guestT, seed := seatedPair(t)
	hostGS, guestGS := startedState(t, seed), startedState(t, seed)
	hostPeer := NewPeer(hostT, room.RoleHost, nil, nil)
	guestPeer := NewPeer(guestT, room.RoleGuest, nil, nil)

	// the guest lost track of the host's hand
	guestGS.Players[0].Hand = nil

	card := hostGS.Players[0].Hand[0]
	play := game.PlayCard{Player: 0, Card: game.CardRef{ID: card.ID, Type: card.Type, Level: card.Level}, Slot: 2}
	if err := hostGS.Apply(play); err != nil {
		t.Fatal(err)
	}
	if err := hostPeer.Publish(context.Background(), hostGS, play); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev, err := guestPeer.NextEvent(ctx, guestGS)
	if err != nil {
		t.Fatal(err)
	}
	applyErr := guestGS.Apply(ev)
	if !errors.Is(applyErr, game.ErrCardNotInHand) {
		t.Fatalf("guest apply: got %v, want ErrCardNotInHand", applyErr)
	}

	// the host serves the snapshot while waiting for guest events
	hostCtx, stopHost := context.WithCancel(ctx)
	hostDone := make(chan error, 1)
	go func() {
		_, err := hostPeer.NextEvent(hostCtx, hostGS)
		hostDone <- err
	}()

	if err := guestPeer.Rejected(ctx, guestGS, ev, applyErr); !errors.Is(err, game.ErrResynced) {
		t.Fatalf("Rejected: got %v, want ErrResynced", err)
	}
	stopHost()
	if err := <-hostDone; !errors.Is(err, context.Canceled) {
		t.Fatalf("host NextEvent: %v", err)
	}

	if a, b := snapshotJSON(t, hostGS), snapshotJSON(t, guestGS); !bytes.Equal(a, b) {
		t.Fatalf("states differ after resync\nhost  %s\nguest %s", a, b)
	}
	if hostPeer.epoch != 1 || guestPeer.epoch != 1 {
		t.Errorf("epochs host=%d guest=%d, want 1", hostPeer.epoch, guestPeer.epoch)
	}

	// play continues in the new epoch
	pass := game.Pass{Player: 0}
	if err := hostGS.Apply(pass); err != nil {
		t.Fatal(err)
	}
	if err := hostPeer.Publish(ctx, hostGS, pass); err != nil {
		t.Fatal(err)
	}
	ev, err = guestPeer.NextEvent(ctx, guestGS)
	if err != nil {
		t.Fatal(err)
	}
	if err := guestGS.Apply(ev); err != nil {
		t.Fatal(err)
	}
	if a, b := snapshotJSON(t, hostGS), snapshotJSON(t, guestGS); !bytes.Equal(a, b) {
		t.Errorf("states differ after pass")
	}
}

// TestHostPushesSnapshot: a guest event the host cannot apply makes the host
// push its state, and the guest's stale events are dropped.
func TestHostPushesSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hostT, guestT, seed := seatedPair(t)
	hostGS, guestGS := startedState(t, seed), startedState(t, seed)
	hostPeer := NewPeer(hostT, room.RoleHost, nil, nil)
	guestPeer := NewPeer(guestT, room.RoleGuest, nil, nil)

	pass := game.Pass{Player: 0}
	if err := hostGS.Apply(pass); err != nil {
		t.Fatal(err)
	}
	if err := hostPeer.Publish(ctx, hostGS, pass); err != nil {
		t.Fatal(err)
	}
	ev, err := guestPeer.NextEvent(ctx, guestGS)
	if err != nil {
		t.Fatal(err)
	}
	if err := guestGS.Apply(ev); err != nil {
		t.Fatal(err)
	}

	// the guest claims an attack from an empty slot, then passes
	bogus := game.Attack{Player: 1, AttackerSlot: 0, DefenderSlot: 0}
	if err := guestPeer.Publish(ctx, guestGS, bogus); err != nil {
		t.Fatal(err)
	}
	if err := guestPeer.Publish(ctx, guestGS, game.Pass{Player: 1}); err != nil {
		t.Fatal(err)
	}

	got, err := hostPeer.NextEvent(ctx, hostGS)
	if err != nil {
		t.Fatal(err)
	}
	applyErr := hostGS.Apply(got)
	if !errors.Is(applyErr, game.ErrSlotEmpty) {
		t.Fatalf("host apply: got %v, want ErrSlotEmpty", applyErr)
	}
	if err := hostPeer.Rejected(ctx, hostGS, got, applyErr); !errors.Is(err, game.ErrResynced) {
		t.Fatalf("host Rejected: got %v, want ErrResynced", err)
	}

	// the stale pass is dropped; the host keeps waiting
	shortCtx, stop := context.WithTimeout(ctx, 50*time.Millisecond)
	defer stop()
	if _, err := hostPeer.NextEvent(shortCtx, hostGS); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("host NextEvent on stale pass: %v", err)
	}

	if _, err := guestPeer.NextEvent(ctx, guestGS); !errors.Is(err, game.ErrResynced) {
		t.Fatalf("guest NextEvent: got %v, want ErrResynced", err)
	}
	if a, b := snapshotJSON(t, hostGS), snapshotJSON(t, guestGS); !bytes.Equal(a, b) {
		t.Errorf("states differ after host snapshot")
	}
}

// TestPeerLeftAfterLastEvent delivers events sent before a departure and
// only then reports the departure.
func TestPeerLeftAfterLastEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hostT, guestT, seed := seatedPair(t)
	hostGS, guestGS := startedState(t, seed), startedState(t, seed)
	hostPeer := NewPeer(hostT, room.RoleHost, nil, nil)
	guestPeer := NewPeer(guestT, room.RoleGuest, nil, nil)

	pass := game.Pass{Player: 0}
	if err := hostGS.Apply(pass); err != nil {
		t.Fatal(err)
	}
	if err := hostPeer.Publish(ctx, hostGS, pass); err != nil {
		t.Fatal(err)
	}
	hostT.leave()

	ev, err := guestPeer.NextEvent(ctx, guestGS)
	if err != nil {
		t.Fatalf("first NextEvent: %v", err)
	}
	if _, ok := ev.(game.Pass); !ok {
		t.Fatalf("got %#v, want the host's pass", ev)
	}
	if _, err := guestPeer.NextEvent(ctx, guestGS); !errors.Is(err, game.ErrPeerLeft) {
		t.Fatalf("second NextEvent: got %v, want ErrPeerLeft", err)
	}
}

func TestPublishSendsEndTurn(t *testing.T) {
	ctx := context.Background()
	hostT, guestT, seed := seatedPair(t)
	hostGS := startedState(t, seed)
	hostPeer := NewPeer(hostT, room.RoleHost, nil, nil)

	pass := game.Pass{Player: 0}
	if err := hostGS.Apply(pass); err != nil {
		t.Fatal(err)
	}
	if err := hostPeer.Publish(ctx, hostGS, pass); err != nil {
		t.Fatal(err)
	}

	var kinds []string
	var turn ServerMessage
	for {
		msg, ok := guestT.TryRecv()
		if !ok {
			break
		}
		kinds = append(kinds, msg.Type)
		if msg.Type == MsgTurnChanged {
			turn = msg
		}
	}
	if len(kinds) != 2 || kinds[0] != MsgGameEvent || kinds[1] != MsgTurnChanged {
		t.Fatalf("guest received %v", kinds)
	}
	if turn.CurrentTurn != room.RoleGuest || turn.TurnNumber != hostGS.Turn {
		t.Errorf("turn_changed = %+v", turn)
	}
}
