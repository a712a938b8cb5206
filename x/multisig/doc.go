/*
Package multisig implements the lifecycle of a pending operation that needs
the approval of several signers before it can be executed.

An Operation is created when a change is proposed. It snapshots the
approvers allowed to vote, the number of approvals required and a hash of
the exact parameters of the change. Approvers submit their disposition
against that hash. Once enough approvals are collected the operation is
Approved, once approval can no longer be reached it is Denied. Finalizing
an operation presents the parameters again. Only when they hash to the
stored value, and the operation was approved, is the change applied by the
caller.

The operation record is consumed by finalization. There is no other way to
close it.
*/
package multisig
