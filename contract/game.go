package contract

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"okinoko-tictactoe/sdk"
)

// ---------- Binary State Codec ----------

// codecVersion increments when storage encoding changes.
// Used to detect incompatible stored state.
const codecVersion uint8 = 1

var errCorruptState = errors.New("corrupt state")

// encodeGame serializes all game fields into a compact byte slice.
//
// Layout:
//
//	version | ID | Meta | TurnCount | CreatedAt | TurnDeadline | Creator |
//	Player1? | Player2? | AssetKind | Token? | AssetDecimals | Stake | Pooled | Board
//
// Meta packs Phase, Outcome and Settlement into a single byte:
//
//	bits 0-1: Phase
//	bits 2-3: Outcome
//	bits 4-5: Settlement
func encodeGame(g *Game) []byte {
	out := make([]byte, 0, 128)

	meta := byte(g.Phase&0x3) | byte(g.Outcome&0x3)<<2 | byte(g.Settlement&0x3)<<4

	out = append(out, codecVersion)
	out = binary.BigEndian.AppendUint64(out, g.ID)
	out = append(out, meta, g.TurnCount)
	out = binary.BigEndian.AppendUint64(out, g.CreatedAt)
	out = binary.BigEndian.AppendUint64(out, g.TurnDeadline)
	out = append(out, g.Creator.Bytes()...)
	out = appendOptAddress(out, g.Player1)
	out = appendOptAddress(out, g.Player2)

	out = append(out, byte(g.Asset.Kind))
	if !g.Asset.IsNative() {
		out = append(out, g.Asset.Token.Bytes()...)
	}
	out = append(out, g.AssetDecimals)
	out = appendAmount(out, g.Stake)
	out = appendAmount(out, g.Pooled)

	board := packBoard(g.Board)
	return append(out, board[:]...)
}

// decodeGame reconstructs a *Game, ensuring no trailing bytes remain.
func decodeGame(b []byte) (*Game, error) {
	r := &rd{b: b}
	if v := r.u8(); r.err == nil && v != codecVersion {
		return nil, fmt.Errorf("unsupported game codec version %d", v)
	}
	g := &Game{}
	g.ID = r.u64()
	meta := r.u8()
	g.Phase = Phase(meta & 0x3)
	g.Outcome = Outcome((meta >> 2) & 0x3)
	g.Settlement = Settlement((meta >> 4) & 0x3)
	g.TurnCount = r.u8()
	g.CreatedAt = r.u64()
	g.TurnDeadline = r.u64()
	g.Creator = r.address()
	g.Player1 = r.optAddress()
	g.Player2 = r.optAddress()

	g.Asset.Kind = sdk.AssetKind(r.u8())
	if !g.Asset.IsNative() {
		g.Asset.Token = r.address()
	}
	g.AssetDecimals = r.u8()
	g.Stake = r.amount()
	g.Pooled = r.amount()
	g.Board = unpackBoard(r.bytes(3))

	if err := r.end(); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return g, nil
}

// encodeStats packs the three counters as big-endian u64s.
func encodeStats(s PlayerStats) []byte {
	out := make([]byte, 0, 24)
	out = binary.BigEndian.AppendUint64(out, s.GamesPlayed)
	out = binary.BigEndian.AppendUint64(out, s.Draws)
	return binary.BigEndian.AppendUint64(out, s.Wins)
}

func decodeStats(b []byte) (PlayerStats, error) {
	r := &rd{b: b}
	s := PlayerStats{GamesPlayed: r.u64(), Draws: r.u64(), Wins: r.u64()}
	if err := r.end(); err != nil {
		return PlayerStats{}, fmt.Errorf("decode stats: %w", err)
	}
	return s, nil
}

// encodeMove stores row, col and a 4-byte delta timestamp (seconds since
// game creation).
func encodeMove(x, y uint8, ts, createdAt uint64) []byte {
	out := []byte{x, y}
	return binary.BigEndian.AppendUint32(out, uint32(ts-createdAt))
}

func decodeMove(b []byte, createdAt uint64) (x, y uint8, ts uint64, err error) {
	r := &rd{b: b}
	x, y = r.u8(), r.u8()
	ts = createdAt + uint64(r.u32())
	err = r.end()
	return
}

// ---------- write helpers ----------

func appendOptAddress(out []byte, a *sdk.Address) []byte {
	if a == nil {
		return append(out, 0)
	}
	out = append(out, 1)
	return append(out, a.Bytes()...)
}

// appendAmount writes a u8 length followed by the minimal big-endian bytes.
func appendAmount(out []byte, v *uint256.Int) []byte {
	if v == nil {
		return append(out, 0)
	}
	b := v.Bytes()
	out = append(out, byte(len(b)))
	return append(out, b...)
}

// ---------- reader ----------

// rd is a binary reader over a byte slice. The first overrun sticks in err
// and every later read returns zero values.
type rd struct {
	b   []byte // raw buffer
	i   int    // current read index
	err error
}

// need ensures that n bytes are available from current position.
func (r *rd) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.i+n > len(r.b) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", errCorruptState, n, r.i, len(r.b))
		return false
	}
	return true
}

func (r *rd) bytes(n int) []byte {
	if !r.need(n) {
		return make([]byte, n)
	}
	v := r.b[r.i : r.i+n]
	r.i += n
	return v
}

func (r *rd) u8() byte { return r.bytes(1)[0] }

func (r *rd) u32() uint32 { return binary.BigEndian.Uint32(r.bytes(4)) }

func (r *rd) u64() uint64 { return binary.BigEndian.Uint64(r.bytes(8)) }

func (r *rd) address() sdk.Address { return sdk.Address(r.bytes(20)) }

func (r *rd) optAddress() *sdk.Address {
	if r.u8() != 1 {
		return nil
	}
	a := r.address()
	return &a
}

func (r *rd) amount() *uint256.Int {
	l := int(r.u8())
	if l > 32 && r.err == nil {
		r.err = fmt.Errorf("%w: amount of %d bytes", errCorruptState, l)
	}
	return new(uint256.Int).SetBytes(r.bytes(l))
}

// end verifies that the reader consumed all bytes exactly.
func (r *rd) end() error {
	if r.err != nil {
		return r.err
	}
	if r.i != len(r.b) {
		return fmt.Errorf("%w: %d trailing bytes", errCorruptState, len(r.b)-r.i)
	}
	return nil
}
