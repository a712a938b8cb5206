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

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := custody.WithLogger(context.Background(), log.NewTMLogger(&buf))
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "wallet/propose"}}
	db := store.MemStore()

	ok := &custodytest.Handler{DeliverResult: custody.DeliverResult{Log: "proposed"}}
	_, err := NewLogging().Deliver(ctx, db, tx, ok)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "proposed")
	assert.Contains(t, buf.String(), "path=wallet/propose")

	buf.Reset()
	failing := &custodytest.Handler{DeliverErr: errors.Wrap(errors.ErrExpired, "too late")}
	_, err = NewLogging().Deliver(ctx, db, tx, failing)
	assert.True(t, errors.ErrExpired.Is(err))
	assert.Contains(t, buf.String(), "too late")
}

func TestActionTagger(t *testing.T) {
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "wallet/finalize"}}
	h := &custodytest.Handler{}

	res, err := NewActionTagger().Deliver(context.Background(), store.MemStore(), tx, h)
	assert.NoError(t, err)
	if assert.Len(t, res.Tags, 1) {
		assert.Equal(t, ActionKey, string(res.Tags[0].Key))
		assert.Equal(t, "wallet/finalize", string(res.Tags[0].Value))
	}

	h.DeliverErr = errors.ErrUnauthorized
	_, err = NewActionTagger().Deliver(context.Background(), store.MemStore(), tx, h)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
