package contract_test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"okinoko-tictactoe/contract"
	"okinoko-tictactoe/sdk"
)

var (
	alice        = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol        = common.HexToAddress("0x00000000000000000000000000000000000ca401")
	treasury     = common.HexToAddress("0x0000000000000000000000000000000000007ea5")
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000c0ffee01")
	tokenAddr    = common.HexToAddress("0x0000000000000000000000000000000000070c3e")
)

const (
	genesis      = 1_700_000_000
	startBalance = 1_000_000
	day          = 24 * time.Hour
)

type contractTest struct {
	t        *testing.T
	chain    *sdk.Chain
	c        *contract.Contract
	adminKey *ecdsa.PrivateKey
	admin    sdk.Address
}

// newContractTest returns a chain with the contract deployed but not
// initialized, and funded players.
func newContractTest(t *testing.T) *contractTest {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)

	ct := &contractTest{
		t:        t,
		chain:    sdk.NewChain(sdk.NewMemStore(), big.NewInt(1), time.Unix(genesis, 0), logger),
		c:        contract.New(contractAddr, contract.WithLogger(logger)),
		adminKey: key,
		admin:    crypto.PubkeyToAddress(key.PublicKey),
	}
	for _, a := range []sdk.Address{alice, bob, carol} {
		require.NoError(t, ct.chain.Mint(sdk.Native(), a, uint256.NewInt(startBalance)))
	}
	return ct
}

// setupContractTest deploys and initializes the contract with the given fee.
func setupContractTest(t *testing.T, fee uint64, absolute bool) *contractTest {
	t.Helper()
	ct := newContractTest(t)
	err := ct.call(ct.admin, nil, func(ctx *sdk.Context) error {
		return ct.c.Init(ctx, contract.InitArgs{
			Admin:         ct.admin,
			Treasury:      treasury,
			Fee:           uint256.NewInt(fee),
			FeeIsAbsolute: absolute,
		})
	})
	require.NoError(t, err)
	return ct
}

func (ct *contractTest) call(sender sdk.Address, value *uint256.Int, fn func(*sdk.Context) error) error {
	return ct.chain.Execute(sdk.Msg{Sender: sender, To: ct.c.Address(), Value: value}, fn)
}

func (ct *contractTest) view(fn func(*sdk.Context) error) {
	ct.t.Helper()
	require.NoError(ct.t, ct.chain.View(ct.c.Address(), fn))
}

func nativeGame(stake uint64) contract.CreateGameArgs {
	return contract.CreateGameArgs{Stake: uint256.NewInt(stake), Asset: sdk.Native(), AssetDecimals: 18}
}

func (ct *contractTest) createAndJoin(sender sdk.Address, args contract.CreateGameArgs, value *uint256.Int) (uint64, error) {
	var id uint64
	err := ct.call(sender, value, func(ctx *sdk.Context) error {
		var err error
		id, err = ct.c.CreateGameAndJoin(ctx, args)
		return err
	})
	return id, err
}

func (ct *contractTest) join(sender sdk.Address, id uint64, value *uint256.Int) error {
	return ct.call(sender, value, func(ctx *sdk.Context) error {
		return ct.c.Join(ctx, id)
	})
}

func (ct *contractTest) move(sender sdk.Address, id uint64, x, y uint8) error {
	return ct.call(sender, nil, func(ctx *sdk.Context) error {
		return ct.c.Move(ctx, id, x, y)
	})
}

func (ct *contractTest) claim(sender sdk.Address, id uint64) error {
	return ct.call(sender, nil, func(ctx *sdk.Context) error {
		return ct.c.ClaimPrize(ctx, id)
	})
}

// startGame seats alice as player1 and bob as player2 of a native game.
func (ct *contractTest) startGame(stake uint64) uint64 {
	ct.t.Helper()
	id, err := ct.createAndJoin(alice, nativeGame(stake), uint256.NewInt(stake))
	require.NoError(ct.t, err)
	require.NoError(ct.t, ct.join(bob, id, uint256.NewInt(stake)))
	return id
}

// play submits moves alternately for alice and bob, alice first.
func (ct *contractTest) play(id uint64, moves ...[2]uint8) {
	ct.t.Helper()
	for i, m := range moves {
		player := alice
		if i%2 == 1 {
			player = bob
		}
		require.NoError(ct.t, ct.move(player, id, m[0], m[1]), "move %d (%d,%d)", i+1, m[0], m[1])
	}
}

func (ct *contractTest) game(id uint64) *contract.GameView {
	ct.t.Helper()
	var g *contract.GameView
	ct.view(func(ctx *sdk.Context) error {
		var err error
		g, err = ct.c.GetGame(ctx, id)
		return err
	})
	return g
}

func (ct *contractTest) stats(addr sdk.Address) contract.PlayerStats {
	ct.t.Helper()
	var s contract.PlayerStats
	ct.view(func(ctx *sdk.Context) error {
		var err error
		s, err = ct.c.GetStats(ctx, addr)
		return err
	})
	return s
}

func (ct *contractTest) feeConfig() contract.FeeConfig {
	ct.t.Helper()
	var cfg contract.FeeConfig
	ct.view(func(ctx *sdk.Context) error {
		var err error
		cfg, err = ct.c.GetFeeConfig(ctx)
		return err
	})
	return cfg
}

func (ct *contractTest) balance(asset sdk.Asset, addr sdk.Address) uint64 {
	ct.t.Helper()
	bal, err := ct.chain.Balance(asset, addr)
	require.NoError(ct.t, err)
	return bal.Uint64()
}

// events returns the committed events of one type, oldest first.
func (ct *contractTest) events(eventType string) []contract.Event {
	ct.t.Helper()
	var out []contract.Event
	for _, line := range ct.chain.Logs() {
		ev, err := contract.ParseEvent(line)
		require.NoError(ct.t, err)
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
