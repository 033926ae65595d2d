package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"okinoko-tictactoe/sdk"
)

// ---------- State keys ----------

const (
	gameCountKey = "g:count"
	configKey    = "cfg"
)

func gameKey(id uint64) string          { return "g:" + UInt64ToString(id) }
func moveKey(id uint64, n uint8) string { return gameKey(id) + ":m:" + UInt64ToString(uint64(n)) }
func statsKey(addr sdk.Address) string  { return "s:" + addr.Hex() }

// ---------- Game counter ----------

// getGameCount returns the highest allocated game id, 0 before the first game.
func getGameCount(ctx *sdk.Context) (uint64, error) {
	v, err := ctx.StateGetObject(gameCountKey)
	if err != nil || v == nil {
		return 0, err
	}
	r := &rd{b: v}
	n := r.u64()
	return n, r.end()
}

func setGameCount(ctx *sdk.Context, n uint64) {
	ctx.StateSetObject(gameCountKey, u64Bytes(n))
}

// ---------- Games ----------

func saveGame(ctx *sdk.Context, g *Game) {
	ctx.StateSetObject(gameKey(g.ID), encodeGame(g))
}

// loadGame fails with ErrGameNotFound for ids never allocated.
func loadGame(ctx *sdk.Context, id uint64) (*Game, error) {
	count, err := getGameCount(ctx)
	if err != nil {
		return nil, err
	}
	if id == 0 || id > count {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, id)
	}
	v, err := ctx.StateGetObject(gameKey(id))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, id)
	}
	return decodeGame(v)
}

func appendMove(ctx *sdk.Context, g *Game, x, y uint8, ts uint64) {
	ctx.StateSetObject(moveKey(g.ID, g.TurnCount), encodeMove(x, y, ts, g.CreatedAt))
}

// loadMoves reads the move log back; odd moves belong to player1.
func loadMoves(ctx *sdk.Context, g *Game) ([]Move, error) {
	moves := make([]Move, 0, g.TurnCount)
	for n := uint8(1); n <= g.TurnCount; n++ {
		v, err := ctx.StateGetObject(moveKey(g.ID, n))
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%w: move %d of game %d missing", errCorruptState, n, g.ID)
		}
		x, y, ts, err := decodeMove(v, g.CreatedAt)
		if err != nil {
			return nil, err
		}
		player := uint8(1)
		if n%2 == 0 {
			player = 2
		}
		moves = append(moves, Move{Number: n, Player: player, X: x, Y: y, At: ts})
	}
	return moves, nil
}

// ---------- Player stats ----------

func loadStats(ctx *sdk.Context, addr sdk.Address) (PlayerStats, error) {
	v, err := ctx.StateGetObject(statsKey(addr))
	if err != nil || v == nil {
		return PlayerStats{}, err
	}
	return decodeStats(v)
}

// updateStats loads, mutates and stores one player's counters.
func updateStats(ctx *sdk.Context, addr sdk.Address, fn func(*PlayerStats)) error {
	s, err := loadStats(ctx, addr)
	if err != nil {
		return err
	}
	fn(&s)
	ctx.StateSetObject(statsKey(addr), encodeStats(s))
	return nil
}

// ---------- Protocol configuration ----------

// protocolConfig is everything the admin controls. It is read once per
// request and handed down as a snapshot.
type protocolConfig struct {
	Admin         sdk.Address
	Treasury      sdk.Address
	Fee           *uint256.Int
	FeeIsAbsolute bool
}

func (p protocolConfig) feeConfig() FeeConfig {
	return FeeConfig{Fee: p.Fee.Clone(), IsAbsolute: p.FeeIsAbsolute, Treasury: p.Treasury}
}

func saveConfig(ctx *sdk.Context, p protocolConfig) {
	out := make([]byte, 0, 80)
	out = append(out, codecVersion)
	out = append(out, p.Admin.Bytes()...)
	out = append(out, p.Treasury.Bytes()...)
	out = append(out, boolByte(p.FeeIsAbsolute))
	out = appendAmount(out, p.Fee)
	ctx.StateSetObject(configKey, out)
}

// loadConfig fails with ErrNotInitialized before Init ran.
func loadConfig(ctx *sdk.Context) (protocolConfig, error) {
	v, err := ctx.StateGetObject(configKey)
	if err != nil {
		return protocolConfig{}, err
	}
	if v == nil {
		return protocolConfig{}, ErrNotInitialized
	}
	r := &rd{b: v}
	if ver := r.u8(); r.err == nil && ver != codecVersion {
		return protocolConfig{}, fmt.Errorf("unsupported config codec version %d", ver)
	}
	p := protocolConfig{
		Admin:         r.address(),
		Treasury:      r.address(),
		FeeIsAbsolute: r.u8() == 1,
		Fee:           r.amount(),
	}
	if err := r.end(); err != nil {
		return protocolConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return p, nil
}

// ---------- Player checks ----------

func isPlayer1(g *Game, addr sdk.Address) bool { return g.Player1 != nil && *g.Player1 == addr }
func isPlayer2(g *Game, addr sdk.Address) bool { return g.Player2 != nil && *g.Player2 == addr }

func isParticipant(g *Game, addr sdk.Address) bool {
	return isPlayer1(g, addr) || isPlayer2(g, addr)
}

// onTurn returns the mark and account expected to move next.
func onTurn(g *Game) (Cell, sdk.Address) {
	if g.Phase == Player1Turn {
		return Player1Mark, *g.Player1
	}
	return Player2Mark, *g.Player2
}
