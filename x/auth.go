package x

import (
	"github.com/iov-one/custody"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetSigners reveals all keys that signed the current transaction.
	GetSigners(custody.Context) []custody.Address
	// HasSigner checks if given key signed the current transaction.
	HasSigner(custody.Context, custody.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetSigners combines all signers from all Authenticators. Each signer is
// returned only once.
func (m MultiAuth) GetSigners(ctx custody.Context) []custody.Address {
	var res []custody.Address
	seen := make(map[custody.Address]struct{})
	for _, impl := range m.impls {
		for _, s := range impl.GetSigners(ctx) {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			res = append(res, s)
		}
	}
	return res
}

// HasSigner returns true iff any Authenticator support this
func (m MultiAuth) HasSigner(ctx custody.Context, addr custody.Address) bool {
	for _, impl := range m.impls {
		if impl.HasSigner(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signer if any, otherwise false.
func MainSigner(ctx custody.Context, auth Authenticator) (custody.Address, bool) {
	signers := auth.GetSigners(ctx)
	if len(signers) == 0 {
		return custody.Address{}, false
	}
	return signers[0], true
}

// HasAllSigners returns true if all elements in required are
// also in context.
func HasAllSigners(ctx custody.Context, auth Authenticator, required []custody.Address) bool {
	for _, r := range required {
		if !auth.HasSigner(ctx, r) {
			return false
		}
	}
	return true
}
