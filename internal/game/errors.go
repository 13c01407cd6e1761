package game

import "errors"

// Illegal actions. Apply returns one of these (possibly wrapped) and leaves
// the state untouched.
var (
	ErrGameOver        = errors.New("game is over")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrActionSpent     = errors.New("action already taken this turn")
	ErrMustAttack      = errors.New("must attack this turn")
	ErrFusionMismatch  = errors.New("fusion operands differ in type, level or owner")
	ErrFusionMaxLevel  = errors.New("card is already at max level")
	ErrSlotOccupied    = errors.New("field slot is occupied")
	ErrSlotEmpty       = errors.New("field slot is empty")
	ErrInvalidSlot     = errors.New("invalid field slot")
	ErrCardNotInHand   = errors.New("card not in hand")
	ErrAttackerCooling = errors.New("attacker is resting this turn")
	ErrNoTarget        = errors.New("no defender in target slot")
	ErrFieldNotEmpty   = errors.New("direct attack requires an empty opposing field")
	ErrDesync          = errors.New("event does not match local state")
)

// Controller outcomes understood by Duel.
var (
	// ErrPeerLeft reports that the side a controller stands for is gone.
	ErrPeerLeft = errors.New("peer left the match")
	// ErrResynced reports that the state was replaced by a snapshot and the
	// current turn should be re-read from it.
	ErrResynced = errors.New("state restored from snapshot")
)
