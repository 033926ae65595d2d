package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"
)

//
// Fee-change authorization.
//
// The admin signs a typed-data (EIP-712) message off-line; the contract
// rebuilds the digest from the proposed values and recovers the signer.
// The message carries no nonce, so a signature stays valid for its
// (fee, isAbsolute) pair for as long as the domain does.
//

const feeChangeType = "FeeChange"

var errMalformedSignature = errors.New("malformed signature")

// Domain binds a signature to one contract instance on one chain.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

func feeChangeTypedData(d Domain, fee *uint256.Int, isAbsolute bool) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			feeChangeType: {
				{Name: "fee", Type: "uint256"},
				{Name: "isAbsolute", Type: "bool"},
			},
		},
		PrimaryType: feeChangeType,
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(d.ChainID)),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"fee":        fee.ToBig(),
			"isAbsolute": isAbsolute,
		},
	}
}

// FeeChangeDigest is the 32-byte hash the admin signs.
func FeeChangeDigest(d Domain, fee *uint256.Int, isAbsolute bool) (common.Hash, error) {
	if fee == nil {
		return common.Hash{}, fmt.Errorf("%w: fee missing", ErrInvalidFeeConfiguration)
	}
	hash, _, err := apitypes.TypedDataAndHash(feeChangeTypedData(d, fee, isAbsolute))
	if err != nil {
		return common.Hash{}, fmt.Errorf("fee change digest: %w", err)
	}
	return common.BytesToHash(hash), nil
}

// SignFeeChange signs the digest with an admin key. Used by off-line tooling.
func SignFeeChange(d Domain, fee *uint256.Int, isAbsolute bool, sign func(hash []byte) ([]byte, error)) ([]byte, error) {
	hash, err := FeeChangeDigest(d, fee, isAbsolute)
	if err != nil {
		return nil, err
	}
	return sign(hash.Bytes())
}

// RecoverFeeChangeSigner answers who signed (fee, isAbsolute) for domain d.
// It does not decide whether that signer is allowed to.
func RecoverFeeChangeSigner(d Domain, fee *uint256.Int, isAbsolute bool, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", errMalformedSignature, len(sig))
	}
	hash, err := FeeChangeDigest(d, fee, isAbsolute)
	if err != nil {
		return common.Address{}, err
	}

	// accept both 0/1 and 27/28 recovery ids
	s := make([]byte, len(sig))
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	r, sv := new(big.Int).SetBytes(s[:32]), new(big.Int).SetBytes(s[32:64])
	if !crypto.ValidateSignatureValues(s[crypto.RecoveryIDOffset], r, sv, true) {
		return common.Address{}, fmt.Errorf("%w: invalid r, s or v", errMalformedSignature)
	}

	pub, err := crypto.SigToPub(hash.Bytes(), s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", errMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
