package sdk

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

const maxCallDepth = 64

// ReceiveHook runs whenever value lands on the hooked address. ctx executes as
// the recipient (Self) with the payer as Sender; returning an error rejects the
// transfer and everything the hook did.
type ReceiveHook func(ctx *Context, asset Asset, amount *uint256.Int) error

// Msg is a top-level request submitted to the chain.
type Msg struct {
	Sender Address
	To     Address      // called contract; credited with Value before execution
	Value  *uint256.Int // attached native currency, may be nil
}

// Chain is the execution environment contracts run in. Requests are applied
// one at a time and either commit in full or leave no trace.
type Chain struct {
	mu      sync.Mutex
	store   Store
	chainID *big.Int
	now     uint64
	txSeq   uint64
	hooks   map[Address]ReceiveHook
	logs    []string
	log     *zap.Logger
}

// NewChain wraps store. A nil logger disables host logging.
func NewChain(store Store, chainID *big.Int, genesis time.Time, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		store:   store,
		chainID: new(big.Int).Set(chainID),
		now:     uint64(genesis.Unix()),
		hooks:   make(map[Address]ReceiveHook),
		log:     logger.Named("chain"),
	}
}

func (c *Chain) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// Now returns the current block timestamp (unix seconds).
func (c *Chain) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SetTime moves the block clock to ts; it never goes backwards.
func (c *Chain) SetTime(ts uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts < c.now {
		return ErrClockBackwards
	}
	c.now = ts
	return nil
}

// Advance moves the block clock forward by d.
func (c *Chain) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += uint64(d / time.Second)
}

// OnReceive installs (or with nil, removes) the receive hook of addr.
func (c *Chain) OnReceive(addr Address, hook ReceiveHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hook == nil {
		delete(c.hooks, addr)
		return
	}
	c.hooks[addr] = hook
}

// Logs returns every log line of committed requests, oldest first.
func (c *Chain) Logs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.logs...)
}

// Execute runs fn as one request. Attached value moves from Sender to To
// before fn runs. Any error discards all of the request's effects.
func (c *Chain) Execute(msg Msg, fn func(*Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.txSeq++
	ov := newOverlay(storeReader{c.store})
	ctx := &Context{
		chain: c,
		env: Env{
			Sender:    msg.Sender,
			Value:     valueOrZero(msg.Value),
			Timestamp: c.now,
			ChainID:   new(big.Int).Set(c.chainID),
			TxID:      fmt.Sprintf("tx-%d", c.txSeq),
		},
		self: msg.To,
		ov:   ov,
	}

	err := ctx.moveValue(Native(), msg.Sender, msg.To, ctx.env.Value)
	if err == nil {
		err = fn(ctx)
	}
	if err != nil {
		c.log.Debug("request reverted",
			zap.String("tx", ctx.env.TxID),
			zap.Stringer("sender", msg.Sender),
			zap.Error(err))
		return err
	}

	if err := c.store.Commit(ov.writes); err != nil {
		return fmt.Errorf("commit %s: %w", ctx.env.TxID, err)
	}
	c.logs = append(c.logs, ov.logs...)
	return nil
}

// View runs fn against current state and throws every write away.
func (c *Chain) View(to Address, fn func(*Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := &Context{
		chain: c,
		env: Env{
			Value:     new(uint256.Int),
			Timestamp: c.now,
			ChainID:   new(big.Int).Set(c.chainID),
		},
		self: to,
		ov:   newOverlay(storeReader{c.store}),
	}
	return fn(ctx)
}

// Mint credits amount of asset to addr out of thin air. Genesis/test funding.
func (c *Chain) Mint(asset Asset, to Address, amount *uint256.Int) error {
	return c.Execute(Msg{Sender: to, To: to}, func(ctx *Context) error {
		bal, err := ctx.BalanceOf(asset, to)
		if err != nil {
			return err
		}
		sum, overflow := new(uint256.Int).AddOverflow(bal, amount)
		if overflow {
			return fmt.Errorf("mint %s: balance overflow", asset)
		}
		ctx.ov.set(balanceKey(asset, to), sum.Bytes())
		return nil
	})
}

// Approve lets spender pull up to amount of token from owner.
func (c *Chain) Approve(token, owner, spender Address, amount *uint256.Int) error {
	return c.Execute(Msg{Sender: owner, To: token}, func(ctx *Context) error {
		return ctx.Approve(token, spender, amount)
	})
}

// Balance reads a committed balance.
func (c *Chain) Balance(asset Asset, addr Address) (*uint256.Int, error) {
	var bal *uint256.Int
	err := c.View(addr, func(ctx *Context) error {
		var err error
		bal, err = ctx.BalanceOf(asset, addr)
		return err
	})
	return bal, err
}

func valueOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
