// Package events defines the fare events emitted on the event bus.
//
// Available event types:
//   - PredictionEvent: outcome of an explicit predict action
//   - RenderEvent: one render cycle of a session, with or without prediction
//   - ModelLoadEvent: result of loading the model artifact at startup
package events
