// Package prediction loads frozen fare models and runs inference on feature
// records. A model artifact is loaded once per process into a Handle which is
// then shared read-only by every session. A missing artifact is not fatal:
// the handle enters the ModelUnavailable state and every prediction attempt
// reports ErrModelNotFound.
package prediction
