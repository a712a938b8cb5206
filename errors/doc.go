/*
Package errors implements the error taxonomy used across custody.

Every error returned by a handler or a model wraps one of the root errors
declared here. Root errors carry a numeric code so a client can categorize a
failure without parsing its message. Use Wrap or Wrapf to add context while
keeping the root cause reachable through Is.

	if err := w.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	...
	if errors.ErrInUse.Is(err) {
		...
	}
*/
package errors
