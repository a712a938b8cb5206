/*
Package utils provides decorators that every custody application stacks
in front of its router: panic recovery, logging, savepoints and action
tagging.
*/
package utils
