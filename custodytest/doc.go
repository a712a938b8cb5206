// Package custodytest provides mocks and helpers shared by custody tests.
package custodytest
