/*
Package cash keeps the balances of every address, one record per address
and ticker.

It is the asset ledger used by wallet operations: operation deposits are
charged and refunded through it and approved transfers move balance account
assets with it.
*/
package cash
