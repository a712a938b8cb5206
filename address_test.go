package custody

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/require"
)

func TestAddressJSON(t *testing.T) {
	a := NewDerivedAddress([]byte("wallet"), []byte("guid"))
	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var back Address
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, a, back)

	require.Error(t, json.Unmarshal([]byte(`"ABCD"`), &back))
	require.Error(t, json.Unmarshal([]byte(`12`), &back))
}

func TestDerivedAddressDependsOnAllSeeds(t *testing.T) {
	a := NewDerivedAddress([]byte("wallet"), []byte("guid-1"))
	b := NewDerivedAddress([]byte("wallet"), []byte("guid-2"))
	require.NotEqual(t, a, b)
	require.Equal(t, a, NewDerivedAddress([]byte("wallet"), []byte("guid-1")))
}

func TestAddressValidate(t *testing.T) {
	var zero Address
	require.True(t, errors.ErrEmpty.Is(zero.Validate()))

	_, err := AddressFromBytes([]byte{1, 2, 3})
	require.True(t, errors.ErrInput.Is(err))

	a, err := ParseAddress("0101010101010101010101010101010101010101010101010101010101010101")
	require.NoError(t, err)
	require.NoError(t, a.Validate())
}
