package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	h := &custodytest.Handler{Panic: "boom"}
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	// Panic handler panics. Test the test tool.
	assert.Panics(t, func() { h.Check(ctx, s, nil) })
	assert.Panics(t, func() { h.Deliver(ctx, s, nil) })

	// Recovery wrapped handler returns an error.
	_, err := r.Check(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = r.Deliver(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))
}

func TestRecoveryLogsPanic(t *testing.T) {
	var buf bytes.Buffer
	ctx := custody.WithLogger(context.Background(), log.NewTMLogger(&buf))
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "wallet/finalize"}}

	_, err := NewRecovery().Deliver(ctx, store.MemStore(), tx, &custodytest.Handler{Panic: "corrupted operation"})
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "corrupted operation")
	assert.Contains(t, buf.String(), "handler panicked")
	assert.Contains(t, buf.String(), "path=wallet/finalize")

	// A handler that does not panic is not affected.
	buf.Reset()
	_, err = NewRecovery().Deliver(ctx, store.MemStore(), tx, &custodytest.Handler{})
	assert.NoError(t, err)
	assert.Empty(t, buf.String())
}
