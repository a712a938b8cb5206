package bech32

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	a := custody.NewDerivedAddress([]byte("signer"))

	enc, err := EncodeAddress("cust", a)
	require.NoError(t, err)
	require.Contains(t, enc, "cust1")

	hrp, back, err := DecodeAddress(enc)
	require.NoError(t, err)
	require.Equal(t, "cust", hrp)
	require.Equal(t, a, back)
}

func TestDecodeInvalid(t *testing.T) {
	_, _, err := Decode("not bech32")
	require.True(t, errors.ErrInput.Is(err))

	short, err := Encode("cust", []byte{1, 2, 3})
	require.NoError(t, err)
	_, _, err = DecodeAddress(string(short))
	require.True(t, errors.ErrInput.Is(err))
}
