package contract

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"okinoko-tictactoe/sdk"
)

//
// Protocol administration: one-time initialization, fee changes (direct or
// by admin signature) and treasury changes.
//

// Init stores the protocol configuration of a fresh deployment. Anyone may
// call it once; the admin is whoever InitArgs names.
func (c *Contract) Init(ctx *sdk.Context, args InitArgs) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	_, err := loadConfig(ctx)
	if err == nil {
		return ErrAlreadyInitialized
	}
	if !errors.Is(err, ErrNotInitialized) {
		return err
	}
	if err := require(args.Admin != sdk.ZeroAddress, fmt.Errorf("%w: admin", ErrInvalidAddress)); err != nil {
		return err
	}
	if err := require(args.Treasury != sdk.ZeroAddress, fmt.Errorf("%w: treasury", ErrInvalidAddress)); err != nil {
		return err
	}
	if err := validateFee(args.Fee, args.FeeIsAbsolute); err != nil {
		return err
	}

	saveConfig(ctx, protocolConfig{
		Admin:         args.Admin,
		Treasury:      args.Treasury,
		Fee:           args.Fee.Clone(),
		FeeIsAbsolute: args.FeeIsAbsolute,
	})
	EmitFeeChanged(ctx, args.Fee, args.FeeIsAbsolute, args.Admin)
	EmitTreasuryChanged(ctx, args.Treasury)
	c.log.Info("contract initialized",
		zap.Stringer("admin", args.Admin),
		zap.Stringer("treasury", args.Treasury),
		zap.String("fee", args.Fee.Dec()),
		zap.Bool("absolute", args.FeeIsAbsolute))
	return nil
}

// ChangeFee applies a fee proposal signed off-line by the admin. Whoever
// submits it does not matter; a malformed signature or any other signer fails
// with ErrUnauthorizedSigner.
func (c *Contract) ChangeFee(ctx *sdk.Context, fee *uint256.Int, isAbsolute bool, signature []byte) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	p, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := validateFee(fee, isAbsolute); err != nil {
		return err
	}
	signer, err := RecoverFeeChangeSigner(c.Domain(ctx), fee, isAbsolute, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorizedSigner, err)
	}
	if err := require(signer == p.Admin, fmt.Errorf("%w: signed by %s", ErrUnauthorizedSigner, signer.Hex())); err != nil {
		return err
	}
	return c.commitFee(ctx, p, fee, isAbsolute, signer)
}

// SetFee is the direct admin path for the same change.
func (c *Contract) SetFee(ctx *sdk.Context, fee *uint256.Int, isAbsolute bool) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	p, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := require(ctx.Sender() == p.Admin, ErrNotAdmin); err != nil {
		return err
	}
	if err := validateFee(fee, isAbsolute); err != nil {
		return err
	}
	return c.commitFee(ctx, p, fee, isAbsolute, ctx.Sender())
}

func (c *Contract) commitFee(ctx *sdk.Context, p protocolConfig, fee *uint256.Int, isAbsolute bool, by sdk.Address) error {
	p.Fee = fee.Clone()
	p.FeeIsAbsolute = isAbsolute
	saveConfig(ctx, p)
	EmitFeeChanged(ctx, fee, isAbsolute, by)
	c.log.Info("fee changed",
		zap.String("fee", fee.Dec()),
		zap.Bool("absolute", isAbsolute),
		zap.Stringer("by", by))
	return nil
}

// ChangeTreasury points fee collection at a new address. Admin only.
func (c *Contract) ChangeTreasury(ctx *sdk.Context, treasury sdk.Address) error {
	if err := c.bound(ctx); err != nil {
		return err
	}
	p, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := require(ctx.Sender() == p.Admin, ErrNotAdmin); err != nil {
		return err
	}
	if err := require(treasury != sdk.ZeroAddress, ErrInvalidAddress); err != nil {
		return err
	}

	p.Treasury = treasury
	saveConfig(ctx, p)
	EmitTreasuryChanged(ctx, treasury)
	c.log.Info("treasury changed", zap.Stringer("treasury", treasury))
	return nil
}
