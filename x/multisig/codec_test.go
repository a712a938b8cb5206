package multisig

import (
	"testing"
	"time"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/require"
)

func TestOperationBinaryRoundTrip(t *testing.T) {
	now := time.Unix(1600000000, 0)
	params := rawParams("round trip")
	keys := approvers(MaxApprovers)
	op, err := NewOperation(keys, 13, now, 24*time.Hour, params)
	require.NoError(t, err)
	require.NoError(t, op.SetDisposition(keys[3], DispositionApprove, op.ParamsHash, now))
	require.NoError(t, op.SetDisposition(keys[7], DispositionDeny, op.ParamsHash, now))

	raw, err := op.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, OperationLen)

	var got Operation
	require.NoError(t, got.UnmarshalBinary(raw))
	require.Equal(t, *op, got)

	again, err := got.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, raw, again)
}

func TestOperationUnmarshalRejectsMalformed(t *testing.T) {
	now := time.Unix(1600000000, 0)
	op, err := NewOperation(approvers(2), 1, now, time.Hour, rawParams("x"))
	require.NoError(t, err)
	valid, err := op.MarshalBinary()
	require.NoError(t, err)

	recordsEnd := 2 + MaxApprovers*recordLen

	cases := map[string]func([]byte) []byte{
		"short": func(b []byte) []byte {
			return b[:len(b)-1]
		},
		"initialized flag": func(b []byte) []byte {
			b[0] = 2
			return b
		},
		"record count": func(b []byte) []byte {
			b[1] = MaxApprovers + 1
			return b
		},
		"record beyond count": func(b []byte) []byte {
			b[2+2*recordLen] = 1
			return b
		},
		"record disposition": func(b []byte) []byte {
			b[2+recordLen-1] = 3
			return b
		},
		"operation disposition": func(b []byte) []byte {
			b[recordsEnd+1] = 3
			return b
		},
	}
	for testName, corrupt := range cases {
		t.Run(testName, func(t *testing.T) {
			raw := corrupt(append([]byte(nil), valid...))
			var got Operation
			err := got.UnmarshalBinary(raw)
			require.True(t, errors.ErrMalformedRecord.Is(err), "unexpected error: %+v", err)
		})
	}
}
