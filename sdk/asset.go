package sdk

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account or a contract on the host chain.
type Address = common.Address

// ZeroAddress is the unset account.
var ZeroAddress Address

// AssetKind tells native currency apart from fungible tokens.
type AssetKind uint8

const (
	AssetNative AssetKind = 0 // chain currency, attached to calls as value
	AssetToken  AssetKind = 1 // fungible token ledger identified by its contract address
)

// Asset is what a balance is denominated in.
type Asset struct {
	Kind  AssetKind
	Token Address
}

// Native returns the chain currency.
func Native() Asset { return Asset{Kind: AssetNative} }

// Token returns the fungible token living at addr.
func Token(addr Address) Asset { return Asset{Kind: AssetToken, Token: addr} }

func (a Asset) IsNative() bool { return a.Kind == AssetNative }

func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return "token:" + a.Token.Hex()
}

// ParseAsset reads the String form back.
func ParseAsset(s string) (Asset, error) {
	if s == "native" {
		return Native(), nil
	}
	hex, ok := strings.CutPrefix(s, "token:")
	if !ok || !common.IsHexAddress(hex) {
		return Asset{}, fmt.Errorf("invalid asset %q", s)
	}
	return Token(common.HexToAddress(hex)), nil
}
