package contract

import (
	"fmt"

	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

// minTurnsToEvaluate is the first turn count at which a line can be complete.
const minTurnsToEvaluate = 5

// Move marks cell (x, y) for the player on turn. An expired turn is rejected
// here; settling it is ResolveTimeout's job.
func (c *Contract) Move(ctx *sdk.Context, gameID uint64, x, y uint8) error {
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
	if err := require(x < BoardSize && y < BoardSize, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)); err != nil {
		return err
	}
	mark, player := onTurn(g)
	if err := require(ctx.Sender() == player, ErrNotYourTurn); err != nil {
		return err
	}
	if err := require(g.Board[x][y] == Empty, ErrCellTaken); err != nil {
		return err
	}
	now := ctx.Timestamp()
	if err := require(now < g.TurnDeadline, ErrTurnExpired); err != nil {
		return err
	}

	g.Board[x][y] = mark
	g.TurnCount++
	g.TurnDeadline = now + turnTimeout
	appendMove(ctx, g, x, y, now)
	EmitMoveMade(ctx, g.ID, player, x, y)
	c.log.Debug("move made",
		zap.Uint64("game", g.ID),
		zap.Stringer("player", player),
		zap.Uint8("x", x),
		zap.Uint8("y", y),
		zap.Uint8("turn", g.TurnCount))

	if g.TurnCount >= minTurnsToEvaluate {
		if outcome := Evaluate(g.Board); outcome != Undetermined {
			if err := c.finishGame(ctx, g, outcome); err != nil {
				return err
			}
			saveGame(ctx, g)
			return nil
		}
	}

	if g.Phase == Player1Turn {
		g.Phase = Player2Turn
	} else {
		g.Phase = Player1Turn
	}
	saveGame(ctx, g)
	return nil
}
