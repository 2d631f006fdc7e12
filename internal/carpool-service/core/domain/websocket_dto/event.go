package websocketdto

// Event is the envelope pushed to a connected client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
