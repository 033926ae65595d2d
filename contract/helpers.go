package contract

import (
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

// turnTimeout is how long the player on turn has to move (one day).
const turnTimeout uint64 = 24 * 60 * 60

// winnerOf returns the winning account, nil for draws and unfinished games.
func winnerOf(g *Game) *sdk.Address {
	switch g.Outcome {
	case Player1Wins:
		return g.Player1
	case Player2Wins:
		return g.Player2
	}
	return nil
}

// finishGame closes the game with outcome, books the result into both players'
// stats and emits the game-over event. Caller saves the game.
func (c *Contract) finishGame(ctx *sdk.Context, g *Game, outcome Outcome) error {
	g.Outcome = outcome
	g.Phase = Finished

	switch outcome {
	case Draw:
		for _, p := range []sdk.Address{*g.Player1, *g.Player2} {
			if err := updateStats(ctx, p, func(s *PlayerStats) { s.Draws++ }); err != nil {
				return err
			}
		}
	default:
		if err := updateStats(ctx, *winnerOf(g), func(s *PlayerStats) { s.Wins++ }); err != nil {
			return err
		}
	}

	EmitGameOver(ctx, g)
	c.log.Debug("game over",
		zap.Uint64("game", g.ID),
		zap.Stringer("outcome", outcome),
		zap.Uint8("turns", g.TurnCount))
	return nil
}

// payout is one leg of a settlement.
type payout struct {
	to     sdk.Address
	amount *uint256.Int
}

// payoutsFor splits pool by outcome: all to the winner, or halves on a draw
// with the odd unit going to player1.
func payoutsFor(g *Game, pool *uint256.Int) []payout {
	if g.Outcome != Draw {
		return []payout{{to: *winnerOf(g), amount: pool.Clone()}}
	}
	half2 := new(uint256.Int).Rsh(pool, 1)
	half1 := new(uint256.Int).Sub(pool, half2)
	return []payout{
		{to: *g.Player1, amount: half1},
		{to: *g.Player2, amount: half2},
	}
}
