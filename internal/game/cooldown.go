package game

// Attack cooldowns are keyed by the owner's own turn counter.

// CanAttack reports whether the card may attack on its owner's turn ownTurn.
func CanAttack(c *CardToken, ownTurn int) bool {
	if c == nil {
		return false
	}
	if c.Level <= 1 {
		return true
	}
	return c.Cooldown.BlockedUntilOwnTurn != ownTurn
}

// RegisterAttack records an attack made on ownTurn and reports whether the
// card is now blocked for the owner's next turn.
func RegisterAttack(c *CardToken, ownTurn int) bool {
	cd := &c.Cooldown
	blocked := false
	switch {
	case c.Level >= 3:
		cd.ConsecutiveAttacks = 0
		cd.BlockedUntilOwnTurn = ownTurn + 1
		blocked = true
	case c.Level == 2:
		if cd.LastAttackedOwnTurn > 0 && cd.LastAttackedOwnTurn == ownTurn-1 {
			cd.ConsecutiveAttacks++
		} else {
			cd.ConsecutiveAttacks = 1
		}
		if cd.ConsecutiveAttacks >= 2 {
			cd.ConsecutiveAttacks = 0
			cd.BlockedUntilOwnTurn = ownTurn + 1
			blocked = true
		}
	}
	cd.LastAttackedOwnTurn = ownTurn
	return blocked
}

// ExpireCooldown clears a block that lies before ownTurn.
func ExpireCooldown(c *CardToken, ownTurn int) {
	if c != nil && c.Cooldown.BlockedUntilOwnTurn != 0 && c.Cooldown.BlockedUntilOwnTurn < ownTurn {
		c.Cooldown.BlockedUntilOwnTurn = 0
	}
}
