package x

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
)

func TestAuth(t *testing.T) {
	a := custodytest.NewAddress()
	b := custodytest.NewAddress()
	c := custodytest.NewAddress()

	ctx1 := &custodytest.CtxAuth{Key: "foo"}
	ctx2 := &custodytest.CtxAuth{Key: "bar"}

	cases := map[string]struct {
		ctx          custody.Context
		auth         Authenticator
		mainSigner   *custody.Address
		wantInCtx    *custody.Address
		wantNotInCtx custody.Address
		wantAll      []custody.Address
	}{
		"empty context": {
			ctx:          context.Background(),
			auth:         &custodytest.Auth{},
			wantNotInCtx: b,
		},
		"signer a": {
			ctx:          context.Background(),
			auth:         &custodytest.Auth{Signer: a},
			mainSigner:   &a,
			wantInCtx:    &a,
			wantNotInCtx: b,
			wantAll:      []custody.Address{a},
		},
		"chained signers are deduplicated": {
			ctx: context.Background(),
			auth: ChainAuth(
				&custodytest.Auth{Signer: b},
				&custodytest.Auth{Signers: []custody.Address{a, b}}),
			mainSigner:   &b,
			wantInCtx:    &a,
			wantNotInCtx: c,
			wantAll:      []custody.Address{b, a},
		},
		"ctxAuth checks what is set by same key": {
			ctx:          ctx1.SetSigners(context.Background(), a, b),
			auth:         ctx1,
			mainSigner:   &a,
			wantInCtx:    &b,
			wantNotInCtx: c,
			wantAll:      []custody.Address{a, b},
		},
		"ctxAuth with different key sees nothing": {
			ctx:          ctx1.SetSigners(context.Background(), a, b),
			auth:         ctx2,
			wantNotInCtx: a,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			main, ok := MainSigner(tc.ctx, tc.auth)
			if tc.mainSigner == nil {
				assert.Equal(t, false, ok)
			} else {
				assert.Equal(t, *tc.mainSigner, main)
			}
			if tc.wantInCtx != nil {
				assert.Equal(t, true, tc.auth.HasSigner(tc.ctx, *tc.wantInCtx))
			}
			assert.Equal(t, false, tc.auth.HasSigner(tc.ctx, tc.wantNotInCtx))
			assert.Equal(t, tc.wantAll, tc.auth.GetSigners(tc.ctx))
			assert.Equal(t, true, HasAllSigners(tc.ctx, tc.auth, tc.wantAll))
			assert.Equal(t, false, HasAllSigners(tc.ctx, tc.auth, append(tc.wantAll, tc.wantNotInCtx)))
		})
	}
}
