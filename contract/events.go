package contract

import (
	"encoding/json"
	"strconv"

	"github.com/holiman/uint256"

	"okinoko-tictactoe/sdk"
)

// Event types, as written to the chain log.
const (
	EventGameCreated     = "gameCreated"
	EventPlayerJoined    = "playerJoined"
	EventMoveMade        = "moveMade"
	EventGameOver        = "gameOver"
	EventGameTimedOut    = "gameTimedOut"
	EventGameResigned    = "gameResigned"
	EventPrizeClaimed    = "prizeClaimed"
	EventFeeChanged      = "feeChanged"
	EventTreasuryChanged = "treasuryChanged"
)

// Event represents the common structure for all emitted events.
// Each event has a type and a set of key/value attributes.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// ParseEvent decodes one chain log line written by emitEvent.
func ParseEvent(line string) (Event, error) {
	var ev Event
	err := json.Unmarshal([]byte(line), &ev)
	return ev, err
}

// emitEvent logs the event as JSON; it is only published if the request
// commits.
func emitEvent(ctx *sdk.Context, eventType string, attributes map[string]string) {
	ctx.Log(ToJSON(Event{Type: eventType, Attributes: attributes}))
}

// EmitGameCreated carries the zero address as creator when the creator did
// not take a seat.
func EmitGameCreated(ctx *sdk.Context, gameID uint64, creator sdk.Address) {
	emitEvent(ctx, EventGameCreated, map[string]string{
		"id": UInt64ToString(gameID),
		"by": creator.Hex(),
	})
}

func EmitPlayerJoined(ctx *sdk.Context, gameID uint64, player sdk.Address, seat uint8) {
	emitEvent(ctx, EventPlayerJoined, map[string]string{
		"id":     UInt64ToString(gameID),
		"player": player.Hex(),
		"seat":   strconv.Itoa(int(seat)),
	})
}

func EmitMoveMade(ctx *sdk.Context, gameID uint64, by sdk.Address, x, y uint8) {
	emitEvent(ctx, EventMoveMade, map[string]string{
		"id": UInt64ToString(gameID),
		"by": by.Hex(),
		"x":  strconv.Itoa(int(x)),
		"y":  strconv.Itoa(int(y)),
	})
}

// EmitGameOver leaves "winner" empty on a draw.
func EmitGameOver(ctx *sdk.Context, g *Game) {
	winner := ""
	if w := winnerOf(g); w != nil {
		winner = w.Hex()
	}
	emitEvent(ctx, EventGameOver, map[string]string{
		"id":      UInt64ToString(g.ID),
		"outcome": g.Outcome.String(),
		"winner":  winner,
	})
}

func EmitGameTimedOut(ctx *sdk.Context, gameID uint64, timedOut sdk.Address) {
	emitEvent(ctx, EventGameTimedOut, map[string]string{
		"id":       UInt64ToString(gameID),
		"timedOut": timedOut.Hex(),
	})
}

func EmitGameResigned(ctx *sdk.Context, gameID uint64, resigner sdk.Address) {
	emitEvent(ctx, EventGameResigned, map[string]string{
		"id":       UInt64ToString(gameID),
		"resigner": resigner.Hex(),
	})
}

func EmitPrizeClaimed(ctx *sdk.Context, gameID uint64, to sdk.Address, amount *uint256.Int) {
	emitEvent(ctx, EventPrizeClaimed, map[string]string{
		"id":     UInt64ToString(gameID),
		"to":     to.Hex(),
		"amount": amount.Dec(),
	})
}

func EmitFeeChanged(ctx *sdk.Context, fee *uint256.Int, isAbsolute bool, by sdk.Address) {
	emitEvent(ctx, EventFeeChanged, map[string]string{
		"fee":      fee.Dec(),
		"absolute": strconv.FormatBool(isAbsolute),
		"by":       by.Hex(),
	})
}

func EmitTreasuryChanged(ctx *sdk.Context, treasury sdk.Address) {
	emitEvent(ctx, EventTreasuryChanged, map[string]string{
		"treasury": treasury.Hex(),
	})
}
