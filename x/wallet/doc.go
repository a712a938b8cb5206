/*
Package wallet implements custodial wallets whose configuration changes
and transfers are applied only after a quorum of approvers agreed.

A wallet holds a fixed size roster of signers, an address book and up to
ten balance accounts. Every change is proposed as an operation that
snapshots the approvers of its scope. Approvers vote through the multisig
extension and the operation is finalized with the exact params it was
proposed with.
*/
package wallet
