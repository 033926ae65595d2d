package contract_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko-tictactoe/contract"
)

func TestFeeChangeDigest(t *testing.T) {
	d := testDomain()
	fee := uint256.NewInt(42)

	h1, err := contract.FeeChangeDigest(d, fee, false)
	require.NoError(t, err)
	h2, err := contract.FeeChangeDigest(d, fee, false)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	differs := func(name string, d contract.Domain, fee uint64, absolute bool) {
		h, err := contract.FeeChangeDigest(d, uint256.NewInt(fee), absolute)
		require.NoError(t, err)
		assert.NotEqual(t, h1, h, name)
	}
	differs("fee", d, 43, false)
	differs("mode", d, 42, true)

	other := d
	other.ChainID = big.NewInt(2)
	differs("chain", other, 42, false)
	other = d
	other.VerifyingContract = alice
	differs("contract", other, 42, false)
	other = d
	other.Version = "2"
	differs("version", other, 42, false)

	_, err = contract.FeeChangeDigest(d, nil, false)
	assert.ErrorIs(t, err, contract.ErrInvalidFeeConfiguration)
}

func TestRecoverFeeChangeSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	sig := signFee(t, key, 5, true)
	require.Len(t, sig, 65)

	got, err := contract.RecoverFeeChangeSigner(testDomain(), uint256.NewInt(5), true, sig)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// a signature only answers for the values it covers
	got, err = contract.RecoverFeeChangeSigner(testDomain(), uint256.NewInt(5), false, sig)
	if err == nil {
		assert.NotEqual(t, want, got)
	}

	_, err = contract.RecoverFeeChangeSigner(testDomain(), uint256.NewInt(5), true, sig[:10])
	assert.Error(t, err)
}
