/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration entity under a key derived from
its package name. The configuration is loaded from the genesis file and can
later be changed by the configuration owner with a patch message.
*/
package gconf
