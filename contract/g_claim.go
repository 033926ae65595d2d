package contract

import (
	"fmt"

	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

//
// Settlement.
//
// The pool is zeroed and the game marked in progress before any funds move,
// so a recipient that calls back into ClaimPrize sees the guard and fails.
// A failed payout fails the whole request, which restores the pool.
//

// ClaimPrize pays out a finished game's pool. Either participant may call it;
// the funds go to the winner, or are split on a draw.
func (c *Contract) ClaimPrize(ctx *sdk.Context, gameID uint64) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	g, err := loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := require(isParticipant(g, ctx.Sender()), ErrNotAParticipant); err != nil {
		return err
	}
	if err := require(g.Phase == Finished, fmt.Errorf("%w: phase is %s", ErrGameNotFinished, g.Phase)); err != nil {
		return err
	}
	if err := require(g.Settlement != SettlementInProgress, ErrSettlementInProgress); err != nil {
		return err
	}
	if err := require(g.Settlement != SettlementDone, ErrPrizeClaimed); err != nil {
		return err
	}

	pool := g.Pooled.Clone()
	g.Pooled.Clear()
	g.Settlement = SettlementInProgress
	saveGame(ctx, g)

	v := vaultFor(g.Asset)
	payouts := payoutsFor(g, pool)
	for _, p := range payouts {
		if p.amount.IsZero() {
			continue
		}
		if err := v.transferOut(ctx, p.to, p.amount); err != nil {
			return fmt.Errorf("pay %s: %w", p.to.Hex(), err)
		}
	}

	g.Settlement = SettlementDone
	saveGame(ctx, g)
	for _, p := range payouts {
		if !p.amount.IsZero() {
			EmitPrizeClaimed(ctx, g.ID, p.to, p.amount)
		}
	}
	c.log.Debug("prize claimed",
		zap.Uint64("game", g.ID),
		zap.Stringer("outcome", g.Outcome),
		zap.String("pool", pool.Dec()))
	return nil
}
