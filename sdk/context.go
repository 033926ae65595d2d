package sdk

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Context is the handle a contract gets for one call: caller identity, block
// data, its own namespaced state and the chain's ledgers.
type Context struct {
	chain *Chain
	env   Env
	self  Address
	ov    *overlay
	depth int
}

func (ctx *Context) Env() Env { return ctx.env }

func (ctx *Context) Sender() Address { return ctx.env.Sender }

// Value is the native amount attached to this call.
func (ctx *Context) Value() *uint256.Int { return ctx.env.Value.Clone() }

func (ctx *Context) Timestamp() uint64 { return ctx.env.Timestamp }

// Self is the contract (or account) currently executing.
func (ctx *Context) Self() Address { return ctx.self }

func (ctx *Context) TxID() string { return ctx.env.TxID }

// ---------- Contract state ----------

func stateKey(self Address, key string) string { return "c/" + self.Hex() + "/" + key }

// StateGetObject returns nil when key was never set.
func (ctx *Context) StateGetObject(key string) ([]byte, error) {
	v, err := ctx.ov.get(stateKey(ctx.self, key))
	if err != nil {
		return nil, fmt.Errorf("state get %q: %w", key, err)
	}
	return v, nil
}

func (ctx *Context) StateSetObject(key string, value []byte) {
	ctx.ov.set(stateKey(ctx.self, key), value)
}

func (ctx *Context) StateDeleteObject(key string) {
	ctx.ov.del(stateKey(ctx.self, key))
}

// Log appends a line to the request's log; it becomes visible on commit.
func (ctx *Context) Log(msg string) { ctx.ov.log(msg) }

// ---------- Nested calls ----------

// Call runs fn as Self calling contract `to` with value attached. The nested
// call gets its own savepoint: on error its effects are dropped and the error
// is returned to the caller, who decides whether to fail too.
func (ctx *Context) Call(to Address, value *uint256.Int, fn func(*Context) error) error {
	return ctx.nested(ctx.self, to, valueOrZero(value), func(child *Context) error {
		if err := child.moveValue(Native(), child.env.Sender, to, child.env.Value); err != nil {
			return err
		}
		return fn(child)
	})
}

func (ctx *Context) nested(sender, self Address, value *uint256.Int, fn func(*Context) error) error {
	if ctx.depth+1 > maxCallDepth {
		return ErrCallDepth
	}
	env := ctx.env
	env.Sender = sender
	env.Value = value
	child := &Context{
		chain: ctx.chain,
		env:   env,
		self:  self,
		ov:    ctx.ov.child(),
		depth: ctx.depth + 1,
	}
	if err := fn(child); err != nil {
		return err
	}
	child.ov.mergeInto(ctx.ov)
	return nil
}
