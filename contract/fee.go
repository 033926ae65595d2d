package contract

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

// FeeDecimals is the fixed-point precision of every configured fee value.
const FeeDecimals = 18

// MaxAssetDecimals bounds the precision a game asset may declare.
const MaxAssetDecimals = 36

// feeBase is 10^FeeDecimals, the 100% mark of a proportional fee.
var feeBase = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(FeeDecimals))

// FeeConfig is the protocol fee in effect for one request.
type FeeConfig struct {
	Fee        *uint256.Int // proportion scaled by feeBase, or absolute amount in FeeDecimals
	IsAbsolute bool
	Treasury   sdk.Address
}

// validateFee is the configuration-time check shared by Init, SetFee and
// ChangeFee.
func validateFee(fee *uint256.Int, isAbsolute bool) error {
	if fee == nil {
		return fmt.Errorf("%w: fee missing", ErrInvalidFeeConfiguration)
	}
	if !isAbsolute && fee.Gt(feeBase) {
		return fmt.Errorf("%w: proportional fee %s above 100%%", ErrInvalidFeeConfiguration, fee.Dec())
	}
	return nil
}

// ComputeFee returns the fee charged on one stake of an asset with the given
// precision. Absolute fees are rescaled from FeeDecimals, truncating when
// scaling down.
func (f FeeConfig) ComputeFee(stake *uint256.Int, assetDecimals uint8) (*uint256.Int, error) {
	if !f.IsAbsolute {
		fee, _ := new(uint256.Int).MulDivOverflow(stake, f.Fee, feeBase)
		return fee, nil
	}
	if assetDecimals > MaxAssetDecimals {
		return nil, ErrInvalidAssetDecimals
	}

	fee := f.Fee.Clone()
	switch {
	case assetDecimals > FeeDecimals:
		scale := pow10(assetDecimals - FeeDecimals)
		if _, overflow := fee.MulOverflow(fee, scale); overflow {
			return nil, fmt.Errorf("%w: fee overflows at %d decimals", ErrInsufficientStake, assetDecimals)
		}
	case assetDecimals < FeeDecimals:
		fee.Div(fee, pow10(FeeDecimals-assetDecimals))
	}
	if fee.Gt(stake) {
		return nil, fmt.Errorf("%w: fee %s, stake %s", ErrInsufficientStake, fee.Dec(), stake.Dec())
	}
	return fee, nil
}

func pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// ---------- Asset vaults ----------

// vault moves a game's asset in and out of escrow.
type vault interface {
	// transferIn takes amount from payer into the contract.
	transferIn(ctx *sdk.Context, payer sdk.Address, amount *uint256.Int) error
	// transferOut pays amount from the contract to `to`.
	transferOut(ctx *sdk.Context, to sdk.Address, amount *uint256.Int) error
}

func vaultFor(a sdk.Asset) vault {
	if a.IsNative() {
		return nativeVault{}
	}
	return tokenVault{token: a.Token}
}

// nativeVault: the host already credited the attached value to the contract,
// it only has to match the stake.
type nativeVault struct{}

func (nativeVault) transferIn(ctx *sdk.Context, _ sdk.Address, amount *uint256.Int) error {
	if !ctx.Value().Eq(amount) {
		return fmt.Errorf("%w: sent %s, stake is %s", ErrInvalidPaymentAmount, ctx.Value().Dec(), amount.Dec())
	}
	return nil
}

func (nativeVault) transferOut(ctx *sdk.Context, to sdk.Address, amount *uint256.Int) error {
	if err := ctx.Transfer(sdk.Native(), to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

// tokenVault pulls from a pre-approved allowance.
type tokenVault struct {
	token sdk.Address
}

func (v tokenVault) transferIn(ctx *sdk.Context, payer sdk.Address, amount *uint256.Int) error {
	if !ctx.Value().IsZero() {
		return fmt.Errorf("%w: token games take no native value", ErrInvalidPaymentAmount)
	}
	allowed, err := ctx.Allowance(v.token, payer, ctx.Self())
	if err != nil {
		return err
	}
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: allowed %s, stake is %s", ErrInsufficientAllowance, allowed.Dec(), amount.Dec())
	}
	if err := ctx.TransferFrom(v.token, payer, ctx.Self(), amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

func (v tokenVault) transferOut(ctx *sdk.Context, to sdk.Address, amount *uint256.Int) error {
	if err := ctx.Transfer(sdk.Token(v.token), to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

// ---------- Stake collection ----------

// collectStake escrows one player's stake and grows the pool by the stake net
// of fee. The fee stays in the contract until forwardFee sends it on, which
// callers do only after the game is saved.
func (c *Contract) collectStake(ctx *sdk.Context, g *Game, payer sdk.Address, cfg FeeConfig) (*uint256.Int, error) {
	fee, err := cfg.ComputeFee(g.Stake, g.AssetDecimals)
	if err != nil {
		return nil, err
	}
	if err := vaultFor(g.Asset).transferIn(ctx, payer, g.Stake); err != nil {
		return nil, err
	}

	net := new(uint256.Int).Sub(g.Stake, fee)
	g.Pooled = new(uint256.Int).Add(g.Pooled, net)

	c.log.Debug("stake collected",
		zap.Uint64("game", g.ID),
		zap.Stringer("player", payer),
		zap.String("asset", g.Asset.String()),
		zap.String("fee", fee.Dec()),
		zap.String("pooled", g.Pooled.Dec()))
	return fee, nil
}

// forwardFee pays a collected fee to the treasury. The treasury may call back
// into the contract, so g must already be saved.
func forwardFee(ctx *sdk.Context, g *Game, cfg FeeConfig, fee *uint256.Int) error {
	if fee.IsZero() {
		return nil
	}
	if err := vaultFor(g.Asset).transferOut(ctx, cfg.Treasury, fee); err != nil {
		return fmt.Errorf("fee to treasury: %w", err)
	}
	return nil
}
