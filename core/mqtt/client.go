package mqtt

import "github.com/kilianp07/taxifare/core/events"

// Publisher announces fare estimates to downstream consumers.
type Publisher interface {
	// PublishFare sends a successful prediction for its session.
	PublishFare(ev events.PredictionEvent) error
	// Disconnect releases the broker connection.
	Disconnect()
}
