package contract

import (
	"fmt"

	"okinoko-tictactoe/sdk"
)

//
// Timeout resolution.
//
// Once the player on turn lets the deadline pass, anyone may close the game:
// the other player wins, stats and events follow as for a normal win.
//

// ResolveTimeout finishes an active game whose turn deadline has passed and
// returns the outcome.
func (c *Contract) ResolveTimeout(ctx *sdk.Context, gameID uint64) (Outcome, error) {
	if err := c.bound(ctx); err != nil {
		return Undetermined, err
	}
	g, err := loadGame(ctx, gameID)
	if err != nil {
		return Undetermined, err
	}
	if err := require(g.Phase.active(), fmt.Errorf("%w: phase is %s", ErrGameNotActive, g.Phase)); err != nil {
		return Undetermined, err
	}
	if err := require(ctx.Timestamp() >= g.TurnDeadline, ErrTurnNotExpired); err != nil {
		return Undetermined, err
	}

	_, timedOut := onTurn(g)
	outcome := Player1Wins
	if g.Phase == Player1Turn {
		outcome = Player2Wins
	}

	EmitGameTimedOut(ctx, g.ID, timedOut)
	if err := c.finishGame(ctx, g, outcome); err != nil {
		return Undetermined, err
	}
	saveGame(ctx, g)
	return outcome, nil
}
