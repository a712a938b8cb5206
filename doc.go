/*
Package custody defines the common interfaces that tie together the
custody subpackages, as well as implementations of the simpler shared
components (when interfaces would be too much overhead).

A transaction is processed by a chain of decorators ending in a router that
dispatches the message to its handler. Every component receives a
context.Context that carries the block time, the chain id and the logger.
Each extension, such as sigs, may add its own keys to enrich the context with
specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set to avoid lower-level modules
overwriting the value.
*/
package custody
