package sdk

import (
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	acct1 = common.HexToAddress("0x0000000000000000000000000000000000000001")
	acct2 = common.HexToAddress("0x0000000000000000000000000000000000000002")
	app   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tok   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func newTestChain(t *testing.T, store Store) *Chain {
	t.Helper()
	c := NewChain(store, big.NewInt(7), time.Unix(1000, 0), zaptest.NewLogger(t))
	require.NoError(t, c.Mint(Native(), acct1, uint256.NewInt(100)))
	return c
}

func balance(t *testing.T, c *Chain, asset Asset, addr Address) uint64 {
	t.Helper()
	b, err := c.Balance(asset, addr)
	require.NoError(t, err)
	return b.Uint64()
}

func TestExecuteCommitsOrDiscards(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	errBoom := errors.New("boom")

	err := c.Execute(Msg{Sender: acct1, To: app, Value: uint256.NewInt(10)}, func(ctx *Context) error {
		assert.Equal(t, uint64(10), ctx.Value().Uint64())
		assert.Equal(t, app, ctx.Self())
		ctx.StateSetObject("k", []byte("v"))
		ctx.Log("kept")
		return nil
	})
	require.NoError(t, err)

	err = c.Execute(Msg{Sender: acct1, To: app, Value: uint256.NewInt(10)}, func(ctx *Context) error {
		ctx.StateSetObject("k", []byte("overwritten"))
		ctx.Log("dropped")
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, uint64(90), balance(t, c, Native(), acct1))
	assert.Equal(t, uint64(10), balance(t, c, Native(), app))
	assert.Equal(t, []string{"kept"}, c.Logs())

	require.NoError(t, c.View(app, func(ctx *Context) error {
		v, err := ctx.StateGetObject("k")
		assert.Equal(t, []byte("v"), v)
		return err
	}))
}

func TestStateIsNamespaced(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	require.NoError(t, c.Execute(Msg{Sender: acct1, To: app}, func(ctx *Context) error {
		ctx.StateSetObject("k", []byte("app"))
		return nil
	}))
	require.NoError(t, c.View(tok, func(ctx *Context) error {
		v, err := ctx.StateGetObject("k")
		assert.Nil(t, v)
		return err
	}))
}

func TestNestedCallRollback(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	errInner := errors.New("inner")

	err := c.Execute(Msg{Sender: acct1, To: app, Value: uint256.NewInt(50)}, func(ctx *Context) error {
		ctx.StateSetObject("outer", []byte{1})
		innerErr := ctx.Call(tok, uint256.NewInt(20), func(inner *Context) error {
			assert.Equal(t, app, inner.Sender())
			inner.StateSetObject("inner", []byte{1})
			inner.Log("inner")
			return errInner
		})
		assert.ErrorIs(t, innerErr, errInner)

		return ctx.Call(tok, uint256.NewInt(5), func(inner *Context) error {
			inner.StateSetObject("inner2", []byte{1})
			return nil
		})
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(45), balance(t, c, Native(), app))
	assert.Equal(t, uint64(5), balance(t, c, Native(), tok))
	assert.Empty(t, c.Logs())
	require.NoError(t, c.View(tok, func(ctx *Context) error {
		v, _ := ctx.StateGetObject("inner")
		assert.Nil(t, v)
		v, _ = ctx.StateGetObject("inner2")
		assert.Equal(t, []byte{1}, v)
		return nil
	}))
}

func TestCallDepth(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	var recurse func(ctx *Context) error
	recurse = func(ctx *Context) error {
		return ctx.Call(app, nil, recurse)
	}
	err := c.Execute(Msg{Sender: acct1, To: app}, recurse)
	assert.ErrorIs(t, err, ErrCallDepth)
}

func TestTransferRunsReceiveHook(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	var seen []uint64
	c.OnReceive(acct2, func(ctx *Context, asset Asset, amount *uint256.Int) error {
		assert.Equal(t, acct2, ctx.Self())
		assert.Equal(t, app, ctx.Sender())
		seen = append(seen, amount.Uint64())
		if amount.Uint64() > 10 {
			return errors.New("too much")
		}
		return nil
	})

	err := c.Execute(Msg{Sender: acct1, To: app, Value: uint256.NewInt(30)}, func(ctx *Context) error {
		if err := ctx.Transfer(Native(), acct2, uint256.NewInt(5)); err != nil {
			return err
		}
		err := ctx.Transfer(Native(), acct2, uint256.NewInt(20))
		assert.ErrorIs(t, err, ErrTransferRejected)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{5, 20}, seen)
	assert.Equal(t, uint64(5), balance(t, c, Native(), acct2))
	assert.Equal(t, uint64(25), balance(t, c, Native(), app))
}

func TestTransferInsufficientBalance(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	err := c.Execute(Msg{Sender: acct1, To: app, Value: uint256.NewInt(101)}, func(*Context) error { return nil })
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(100), balance(t, c, Native(), acct1))
}

func TestTokenAllowance(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	token := Token(tok)
	require.NoError(t, c.Mint(token, acct1, uint256.NewInt(1000)))
	require.NoError(t, c.Approve(tok, acct1, app, uint256.NewInt(300)))

	pull := func(amount uint64) error {
		return c.Execute(Msg{Sender: acct2, To: app}, func(ctx *Context) error {
			return ctx.TransferFrom(tok, acct1, acct2, uint256.NewInt(amount))
		})
	}
	require.ErrorIs(t, pull(301), ErrInsufficientAllowance)
	require.NoError(t, pull(200))
	require.ErrorIs(t, pull(101), ErrInsufficientAllowance)
	require.NoError(t, pull(100))

	assert.Equal(t, uint64(700), balance(t, c, token, acct1))
	assert.Equal(t, uint64(300), balance(t, c, token, acct2))
	assert.Equal(t, uint64(100), balance(t, c, Native(), acct1))

	require.NoError(t, c.View(app, func(ctx *Context) error {
		left, err := ctx.Allowance(tok, acct1, app)
		assert.True(t, left.IsZero())
		return err
	}))
}

func TestClock(t *testing.T) {
	c := newTestChain(t, NewMemStore())
	assert.Equal(t, uint64(1000), c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, uint64(1090), c.Now())
	require.ErrorIs(t, c.SetTime(1089), ErrClockBackwards)
	require.NoError(t, c.SetTime(2000))

	require.NoError(t, c.Execute(Msg{Sender: acct1, To: app}, func(ctx *Context) error {
		assert.Equal(t, uint64(2000), ctx.Timestamp())
		assert.Equal(t, big.NewInt(7), ctx.Env().ChainID)
		return nil
	}))
}

func TestBadgerStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	store, err := OpenBadger(dir, false)
	require.NoError(t, err)

	c := newTestChain(t, store)
	require.NoError(t, c.Execute(Msg{Sender: acct1, To: app, Value: uint256.NewInt(40)}, func(ctx *Context) error {
		ctx.StateSetObject("k", []byte("v"))
		return nil
	}))
	require.NoError(t, store.Close())

	store, err = OpenBadger(dir, false)
	require.NoError(t, err)
	defer store.Close()

	c = NewChain(store, big.NewInt(7), time.Unix(1000, 0), nil)
	assert.Equal(t, uint64(60), balance(t, c, Native(), acct1))
	require.NoError(t, c.View(app, func(ctx *Context) error {
		v, err := ctx.StateGetObject("k")
		assert.Equal(t, []byte("v"), v)
		return err
	}))
}

func TestBadgerInMemoryDelete(t *testing.T) {
	store, err := OpenBadger("", true)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Commit(map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	require.NoError(t, store.Commit(map[string][]byte{"a": nil}))

	v, err := store.Get("a")
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = store.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestParseAsset(t *testing.T) {
	for _, a := range []Asset{Native(), Token(tok)} {
		got, err := ParseAsset(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAsset("token:nope")
	assert.Error(t, err)
}
