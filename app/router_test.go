package app

import (
	"context"
	"testing"

	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	r := NewRouter()
	good, bad, missing := "good", "bad/path", "missing"

	counter := &custodytest.Handler{}
	r.Handle(good, counter)
	r.Handle(bad, &custodytest.Handler{DeliverErr: errors.ErrAmount})

	// make sure invalid registrations panic
	assert.Panics(t, func() { r.Handle(good, counter) })
	assert.Panics(t, func() { r.Handle("l:7", counter) })

	ctx := context.Background()
	tx := func(path string) *custodytest.Tx {
		return &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: path}}
	}

	_, err := r.Check(ctx, nil, tx(good))
	assert.NoError(t, err)
	_, err = r.Deliver(ctx, nil, tx(good))
	assert.NoError(t, err)
	assert.Equal(t, 2, counter.CallCount())

	_, err = r.Deliver(ctx, nil, tx(bad))
	assert.True(t, errors.ErrAmount.Is(err))

	_, err = r.Deliver(ctx, nil, tx(missing))
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Check(ctx, nil, tx(missing))
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 2, counter.CallCount())

	_, err = r.Check(ctx, nil, &custodytest.Tx{Err: errors.ErrMsg})
	assert.True(t, errors.ErrMsg.Is(err))
}
