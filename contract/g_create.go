package contract

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

//
// Creation helpers for spinning up a new game instance.
//

// CreateGame opens a game nobody is seated in yet. No value may be attached.
func (c *Contract) CreateGame(ctx *sdk.Context, args CreateGameArgs) (uint64, error) {
	return c.createGame(ctx, args, false)
}

// CreateGameAndJoin opens a game and seats the creator as player1 in the same
// request, collecting the creator's stake.
func (c *Contract) CreateGameAndJoin(ctx *sdk.Context, args CreateGameArgs) (uint64, error) {
	return c.createGame(ctx, args, true)
}

func (c *Contract) createGame(ctx *sdk.Context, args CreateGameArgs, selfJoin bool) (uint64, error) {
	if err := c.bound(ctx); err != nil {
		return 0, err
	}
	p, err := loadConfig(ctx)
	if err != nil {
		return 0, err
	}
	if err := validateCreateArgs(args, p.feeConfig()); err != nil {
		return 0, err
	}
	if !selfJoin && !ctx.Value().IsZero() {
		return 0, fmt.Errorf("%w: value attached without joining", ErrInvalidPaymentAmount)
	}

	count, err := getGameCount(ctx)
	if err != nil {
		return 0, err
	}
	g := initNewGame(count+1, ctx.Sender(), ctx.Timestamp(), args)
	setGameCount(ctx, g.ID)

	creator := sdk.ZeroAddress
	if selfJoin {
		creator = ctx.Sender()
	}
	EmitGameCreated(ctx, g.ID, creator)
	c.log.Debug("game created",
		zap.Uint64("game", g.ID),
		zap.Stringer("creator", ctx.Sender()),
		zap.String("asset", g.Asset.String()),
		zap.String("stake", g.Stake.Dec()),
		zap.Bool("selfJoin", selfJoin))

	if !selfJoin {
		saveGame(ctx, g)
		return g.ID, nil
	}
	if err := c.seatPlayer(ctx, g, ctx.Sender(), p.feeConfig()); err != nil {
		return 0, err
	}
	return g.ID, nil
}

// initNewGame constructs a fresh Game with an empty board and pool.
// Timestamps are passed in so creation does not depend on the env in tests.
func initNewGame(id uint64, creator sdk.Address, ts uint64, args CreateGameArgs) *Game {
	return &Game{
		ID:            id,
		Creator:       creator,
		CreatedAt:     ts,
		Phase:         AwaitingPlayers,
		Outcome:       Undetermined,
		Asset:         args.Asset,
		AssetDecimals: args.AssetDecimals,
		Stake:         args.Stake.Clone(),
		Pooled:        new(uint256.Int),
	}
}

// validateCreateArgs rejects games that could never be joined under the
// current fee.
func validateCreateArgs(args CreateGameArgs, fee FeeConfig) error {
	if args.Stake == nil {
		return fmt.Errorf("%w: stake missing", ErrInsufficientStake)
	}
	if args.AssetDecimals > MaxAssetDecimals {
		return fmt.Errorf("%w: %d", ErrInvalidAssetDecimals, args.AssetDecimals)
	}
	switch args.Asset.Kind {
	case sdk.AssetNative:
	case sdk.AssetToken:
		if args.Asset.Token == sdk.ZeroAddress {
			return fmt.Errorf("%w: token", ErrInvalidAddress)
		}
	default:
		return fmt.Errorf("%w: unknown asset kind %d", ErrInvalidAddress, args.Asset.Kind)
	}
	_, err := fee.ComputeFee(args.Stake, args.AssetDecimals)
	return err
}
