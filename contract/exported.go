package contract

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

// Default typed-data domain of fee-change signatures.
const (
	DefaultName    = "OkinokoTicTacToe"
	DefaultVersion = "1"
)

// Contract is the staked tic-tac-toe contract deployed at one address. It
// holds no mutable state itself: every entry point reads and writes through
// the request's sdk.Context, which must be executing as Address().
type Contract struct {
	addr    sdk.Address
	name    string
	version string
	log     *zap.Logger
}

// Option tweaks a Contract at construction.
type Option func(*Contract)

// WithLogger routes debug logging of state transitions to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Contract) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDomain overrides the name and version bound into fee-change signatures.
func WithDomain(name, version string) Option {
	return func(c *Contract) {
		c.name = name
		c.version = version
	}
}

func New(addr sdk.Address, opts ...Option) *Contract {
	c := &Contract{
		addr:    addr,
		name:    DefaultName,
		version: DefaultVersion,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.Named("contract").With(zap.Stringer("address", addr))
	return c
}

func (c *Contract) Address() sdk.Address { return c.addr }

// bound rejects a context executing as any address other than Address().
func (c *Contract) bound(ctx *sdk.Context) error {
	if ctx.Self() != c.addr {
		return fmt.Errorf("%w: running as %s", ErrWrongContract, ctx.Self().Hex())
	}
	return nil
}

// Domain returns the typed-data domain for the chain ctx runs on.
func (c *Contract) Domain(ctx *sdk.Context) Domain {
	return Domain{
		Name:              c.name,
		Version:           c.version,
		ChainID:           ctx.Env().ChainID,
		VerifyingContract: c.addr,
	}
}

// ---------- Queries ----------

// GameView is the read-only snapshot returned by GetGame.
type GameView struct {
	Game
	BoardASCII string
	Winner     *sdk.Address
}

// GetGame returns a snapshot of the game record.
func (c *Contract) GetGame(ctx *sdk.Context, gameID uint64) (*GameView, error) {
	if err := c.bound(ctx); err != nil {
		return nil, err
	}
	g, err := loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &GameView{Game: *g, BoardASCII: g.Board.String(), Winner: winnerOf(g)}, nil
}

// GetMoves returns the game's move log in order.
func (c *Contract) GetMoves(ctx *sdk.Context, gameID uint64) ([]Move, error) {
	if err := c.bound(ctx); err != nil {
		return nil, err
	}
	g, err := loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return loadMoves(ctx, g)
}

// GetGameCount returns the highest game id allocated so far.
func (c *Contract) GetGameCount(ctx *sdk.Context) (uint64, error) {
	if err := c.bound(ctx); err != nil {
		return 0, err
	}
	return getGameCount(ctx)
}

// GetStats returns zero counters for accounts that never played.
func (c *Contract) GetStats(ctx *sdk.Context, addr sdk.Address) (PlayerStats, error) {
	if err := c.bound(ctx); err != nil {
		return PlayerStats{}, err
	}
	return loadStats(ctx, addr)
}

// GetWinRate returns 100*wins/gamesPlayed, rounded down. Accounts without
// games fail with ErrNoGamesPlayed rather than reporting 0%.
func (c *Contract) GetWinRate(ctx *sdk.Context, addr sdk.Address) (uint64, error) {
	if err := c.bound(ctx); err != nil {
		return 0, err
	}
	s, err := loadStats(ctx, addr)
	if err != nil {
		return 0, err
	}
	if s.GamesPlayed == 0 {
		return 0, ErrNoGamesPlayed
	}
	return 100 * s.Wins / s.GamesPlayed, nil
}

// GetFeeConfig returns the fee currently charged on joins.
func (c *Contract) GetFeeConfig(ctx *sdk.Context) (FeeConfig, error) {
	if err := c.bound(ctx); err != nil {
		return FeeConfig{}, err
	}
	p, err := loadConfig(ctx)
	if err != nil {
		return FeeConfig{}, err
	}
	return p.feeConfig(), nil
}

// GetAdmin returns the administrative identity.
func (c *Contract) GetAdmin(ctx *sdk.Context) (sdk.Address, error) {
	if err := c.bound(ctx); err != nil {
		return sdk.Address{}, err
	}
	p, err := loadConfig(ctx)
	return p.Admin, err
}

// QuoteFee previews the fee one player pays for stake.
func (c *Contract) QuoteFee(ctx *sdk.Context, stake *uint256.Int, assetDecimals uint8) (*uint256.Int, error) {
	cfg, err := c.GetFeeConfig(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.ComputeFee(stake, assetDecimals)
}
