package net

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/log"
)

// TerminalController is a game.PlayerController that renders the board to
// a writer and reads numbered choices from a reader.
type TerminalController struct {
	Player int
	lines  chan string
	out    io.Writer
}

// NewTerminalController starts reading lines from in.
func NewTerminalController(player int, in io.Reader, out io.Writer) *TerminalController {
	tc := &TerminalController{Player: player, lines: make(chan string), out: out}
	go func() {
		defer close(tc.lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			tc.lines <- sc.Text()
		}
	}()
	return tc
}

// ChooseAction implements game.PlayerController.
func (tc *TerminalController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	tc.renderState(BuildStateView(state, tc.Player))
	tc.renderActions(actions)
	for {
		fmt.Fprint(tc.out, "> ")
		select {
		case line, ok := <-tc.lines:
			if !ok {
				return game.Action{}, io.EOF
			}
			n, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil || n < 1 || n > len(actions) {
				fmt.Fprintf(tc.out, "Enter a number between 1 and %d\n", len(actions))
				continue
			}
			return actions[n-1], nil
		case <-ctx.Done():
			fmt.Fprintln(tc.out, "\nTime is up.")
			return game.Action{}, ctx.Err()
		}
	}
}

// Notify implements game.PlayerController.
func (tc *TerminalController) Notify(ctx context.Context, event log.GameEvent) error {
	_, err := fmt.Fprintln(tc.out, log.FormatEvent(event))
	return err
}

func (tc *TerminalController) renderState(sv *StateView) {
	w := tc.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")

	opp := sv.Opponent
	fmt.Fprintf(w, "║  OPPONENT  Hand: %d  Deck: %d  Graveyard: %d  Essences: %s\n",
		opp.HandCount, opp.DeckCount, opp.GraveyardCount, formatEssences(opp.Essences))
	fmt.Fprintf(w, "║  Field:  %s\n", formatField(opp.Field))
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")

	you := sv.You
	fmt.Fprintf(w, "║  Field:  %s\n", formatField(you.Field))
	fmt.Fprintf(w, "║  YOU       Hand: %d  Deck: %d  Graveyard: %d  Essences: %s\n",
		you.HandCount, you.DeckCount, you.GraveyardCount, formatEssences(you.Essences))
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	if sv.MustAttack {
		turnInfo += " | MUST ATTACK"
	}
	fmt.Fprintln(w, turnInfo)

	if len(you.Hand) > 0 {
		fmt.Fprint(w, "\nHand: ")
		for i, name := range you.Hand {
			fmt.Fprintf(w, "[%d] %s  ", i+1, name)
		}
		fmt.Fprintln(w)
	}
}

func formatField(field [game.FieldSlots]SlotView) string {
	parts := make([]string, len(field))
	for i, s := range field {
		parts[i] = formatSlot(s)
	}
	return strings.Join(parts, " ")
}

func formatSlot(s SlotView) string {
	switch {
	case s.Empty:
		return "[ ]"
	case s.Name == "":
		return "[SET]"
	case s.FaceDown:
		return fmt.Sprintf("[SET:%s]", s.Name)
	case s.Resting:
		return fmt.Sprintf("[%s zz]", s.Name)
	default:
		return fmt.Sprintf("[%s]", s.Name)
	}
}

func formatEssences(names []string) string {
	return fmt.Sprintf("%d/%d %s", len(names), game.NumCardTypes, strings.Join(names, ","))
}

func (tc *TerminalController) renderActions(actions []game.Action) {
	fmt.Fprintln(tc.out, "\nActions:")
	for i, a := range actions {
		fmt.Fprintf(tc.out, "  %d) %s\n", i+1, a)
	}
}
