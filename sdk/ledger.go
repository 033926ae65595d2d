package sdk

import (
	"fmt"

	"github.com/holiman/uint256"
)

//
// Balance and allowance ledgers shared by every contract on the chain.
// Amounts are stored as minimal big-endian bytes of a uint256.
//

func balanceKey(asset Asset, addr Address) string {
	return "b/" + asset.String() + "/" + addr.Hex()
}

func allowanceKey(token, owner, spender Address) string {
	return "a/" + token.Hex() + "/" + owner.Hex() + "/" + spender.Hex()
}

func (ctx *Context) readAmount(key string) (*uint256.Int, error) {
	v, err := ctx.ov.get(key)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(v), nil
}

func (ctx *Context) writeAmount(key string, amount *uint256.Int) {
	if amount.IsZero() {
		ctx.ov.del(key)
		return
	}
	ctx.ov.set(key, amount.Bytes())
}

// BalanceOf reads addr's balance of asset.
func (ctx *Context) BalanceOf(asset Asset, addr Address) (*uint256.Int, error) {
	return ctx.readAmount(balanceKey(asset, addr))
}

// Allowance reads how much spender may still pull from owner.
func (ctx *Context) Allowance(token, owner, spender Address) (*uint256.Int, error) {
	return ctx.readAmount(allowanceKey(token, owner, spender))
}

// Approve sets the allowance of spender over the Sender's tokens.
func (ctx *Context) Approve(token, spender Address, amount *uint256.Int) error {
	ctx.writeAmount(allowanceKey(token, ctx.env.Sender, spender), amount)
	return nil
}

// Transfer pays amount of asset from Self to `to`, running to's receive hook.
func (ctx *Context) Transfer(asset Asset, to Address, amount *uint256.Int) error {
	return ctx.pay(asset, ctx.self, to, amount)
}

// TransferFrom pulls amount of token from `from` to `to`, spending Self's
// allowance.
func (ctx *Context) TransferFrom(token, from, to Address, amount *uint256.Int) error {
	key := allowanceKey(token, from, ctx.self)
	allowed, err := ctx.readAmount(key)
	if err != nil {
		return err
	}
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: %s allowed, %s requested", ErrInsufficientAllowance, allowed.Dec(), amount.Dec())
	}
	return ctx.nested(ctx.self, ctx.self, new(uint256.Int), func(child *Context) error {
		child.writeAmount(key, new(uint256.Int).Sub(allowed, amount))
		return child.pay(Token(token), from, to, amount)
	})
}

// pay moves the funds inside a savepoint and lets the recipient react.
func (ctx *Context) pay(asset Asset, from, to Address, amount *uint256.Int) error {
	return ctx.nested(from, ctx.self, new(uint256.Int), func(child *Context) error {
		if err := child.moveValue(asset, from, to, amount); err != nil {
			return err
		}
		hook := ctx.chain.hooks[to]
		if hook == nil {
			return nil
		}
		return child.nested(from, to, new(uint256.Int), func(rc *Context) error {
			if err := hook(rc, asset, amount.Clone()); err != nil {
				return fmt.Errorf("%w: %v", ErrTransferRejected, err)
			}
			return nil
		})
	})
}

// moveValue adjusts both balances without running hooks.
func (ctx *Context) moveValue(asset Asset, from, to Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	fromKey, toKey := balanceKey(asset, from), balanceKey(asset, to)
	fromBal, err := ctx.readAmount(fromKey)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: %s has %s %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBal.Dec(), asset, amount.Dec())
	}
	ctx.writeAmount(fromKey, new(uint256.Int).Sub(fromBal, amount))

	toBal, err := ctx.readAmount(toKey)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(toBal, amount)
	if overflow {
		return fmt.Errorf("credit %s: balance overflow", to.Hex())
	}
	ctx.writeAmount(toKey, sum)
	return nil
}
