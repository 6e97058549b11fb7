// Package domain contains the value objects produced and consumed by the
// trust and pricing engines. They are request-scoped, carry no behavior
// beyond simple derivations and are free of infrastructure concerns so they
// can be shared across packages.
package domain
