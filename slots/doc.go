/*
Package slots implements fixed capacity, index addressed collections.

A Slots store keeps up to capacity optional values. Every value lives in a
slot whose id is always supplied by the caller, never inferred from the
content. Batch operations are atomic: the whole batch is checked before any
slot is written.

A Flags set is a bitset over the same index space. It marks a subset of the
slots as enabled for some role, for example the signers that may approve a
configuration change.
*/
package slots
