package contract

import (
	"github.com/holiman/uint256"

	"okinoko-tictactoe/sdk"
)

// Cell is one square of the 3x3 board.
type Cell uint8

const (
	Empty       Cell = 0
	Player1Mark Cell = 1
	Player2Mark Cell = 2
)

// Phase is the coarse lifecycle stage of a game.
type Phase uint8

const (
	AwaitingPlayers Phase = 0 // fewer than two players joined
	Player1Turn     Phase = 1
	Player2Turn     Phase = 2
	Finished        Phase = 3 // outcome known, board frozen
)

func (p Phase) String() string {
	switch p {
	case AwaitingPlayers:
		return "awaitingPlayers"
	case Player1Turn:
		return "player1Turn"
	case Player2Turn:
		return "player2Turn"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// active reports whether moves are accepted in this phase.
func (p Phase) active() bool { return p == Player1Turn || p == Player2Turn }

// Outcome is the terminal result of a game; Undetermined until Finished.
type Outcome uint8

const (
	Undetermined Outcome = 0
	Player1Wins  Outcome = 1
	Player2Wins  Outcome = 2
	Draw         Outcome = 3
)

func (o Outcome) String() string {
	switch o {
	case Undetermined:
		return "undetermined"
	case Player1Wins:
		return "player1"
	case Player2Wins:
		return "player2"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// Settlement tracks the one-time payout of a finished game's pool.
type Settlement uint8

const (
	SettlementNone       Settlement = 0
	SettlementInProgress Settlement = 1 // pool drained, payouts running
	SettlementDone       Settlement = 2
)

// BoardSize is the side length of the board.
const BoardSize = 3

// Board is indexed Board[x][y].
type Board [BoardSize][BoardSize]Cell

// Game is the full per-game record, persisted with the binary codec in game.go.
//
// Fields:
//   - ID: positive, assigned from the game counter
//   - Creator: account that submitted the creation request
//   - Player1/Player2: nil until the seat is taken
//   - CreatedAt/TurnDeadline: unix seconds
//   - Asset/AssetDecimals: what the stake is paid in and its precision
//   - Stake: required contribution per player
//   - Pooled: escrowed amount net of fees, drained once on settlement
type Game struct {
	ID            uint64
	Creator       sdk.Address
	Player1       *sdk.Address
	Player2       *sdk.Address
	CreatedAt     uint64
	TurnDeadline  uint64
	Phase         Phase
	Outcome       Outcome
	Settlement    Settlement
	Board         Board
	TurnCount     uint8
	Asset         sdk.Asset
	AssetDecimals uint8
	Stake         *uint256.Int
	Pooled        *uint256.Int
}

// PlayerStats are per-account lifetime counters.
type PlayerStats struct {
	GamesPlayed uint64 `json:"gamesPlayed"`
	Draws       uint64 `json:"draws"`
	Wins        uint64 `json:"wins"`
}

// Move is one entry of a game's move log.
type Move struct {
	Number uint8  `json:"n"`
	Player uint8  `json:"player"` // 1 or 2
	X      uint8  `json:"x"`
	Y      uint8  `json:"y"`
	At     uint64 `json:"at"` // unix seconds
}

// CreateGameArgs describes a new game.
type CreateGameArgs struct {
	Stake         *uint256.Int
	Asset         sdk.Asset
	AssetDecimals uint8
}

// InitArgs configure a freshly deployed contract.
type InitArgs struct {
	Admin         sdk.Address
	Treasury      sdk.Address
	Fee           *uint256.Int
	FeeIsAbsolute bool
}
