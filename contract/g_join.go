package contract

import (
	"fmt"

	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

// Join takes the next free seat of a game waiting for players, paying the
// stake. The second join starts the game with player1 on turn.
func (c *Contract) Join(ctx *sdk.Context, gameID uint64) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	p, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	g, err := loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	return c.seatPlayer(ctx, g, ctx.Sender(), p.feeConfig())
}

// seatPlayer is the join step shared with CreateGameAndJoin. It saves g before
// the fee leaves the contract; callers must not save g afterwards, since the
// treasury may have joined or otherwise changed the game in between.
func (c *Contract) seatPlayer(ctx *sdk.Context, g *Game, joiner sdk.Address, cfg FeeConfig) error {
	if err := require(g.Phase == AwaitingPlayers, fmt.Errorf("%w: phase is %s", ErrGameFull, g.Phase)); err != nil {
		return err
	}
	if err := require(!isPlayer1(g, joiner), ErrAlreadyJoined); err != nil {
		return err
	}
	fee, err := c.collectStake(ctx, g, joiner, cfg)
	if err != nil {
		return err
	}

	seat := uint8(1)
	if g.Player1 == nil {
		g.Player1 = &joiner
	} else {
		seat = 2
		g.Player2 = &joiner
		g.Phase = Player1Turn
		g.TurnDeadline = ctx.Timestamp() + turnTimeout
	}
	if err := updateStats(ctx, joiner, func(s *PlayerStats) { s.GamesPlayed++ }); err != nil {
		return err
	}
	saveGame(ctx, g)

	EmitPlayerJoined(ctx, g.ID, joiner, seat)
	c.log.Debug("player joined",
		zap.Uint64("game", g.ID),
		zap.Stringer("player", joiner),
		zap.Uint8("seat", seat))

	return forwardFee(ctx, g, cfg, fee)
}
