/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

Every key that signed a transaction gets an account in the "sigs" bucket
holding the next expected sequence. A signature is accepted only if it
was created for the current chain and the current sequence of its key.
*/
package sigs
