package domain

// Broadcaster pushes game updates to connected players
type Broadcaster interface {
	// BroadcastGame sends an event to every player seated in a game
	BroadcastGame(gameID string, event interface{})
}
