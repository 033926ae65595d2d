package contract

import (
	"fmt"

	"okinoko-tictactoe/sdk"
)

// Resign concedes an active game; the opponent wins.
func (c *Contract) Resign(ctx *sdk.Context, gameID uint64) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	g, err := loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := require(g.Phase.active(), fmt.Errorf("%w: phase is %s", ErrGameNotActive, g.Phase)); err != nil {
		return err
	}
	sender := ctx.Sender()
	if err := require(isParticipant(g, sender), ErrNotAParticipant); err != nil {
		return err
	}

	outcome := Player1Wins
	if isPlayer1(g, sender) {
		outcome = Player2Wins
	}

	EmitGameResigned(ctx, g.ID, sender)
	if err := c.finishGame(ctx, g, outcome); err != nil {
		return err
	}
	saveGame(ctx, g)
	return nil
}
