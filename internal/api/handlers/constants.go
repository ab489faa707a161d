package handlers

const (
	// recommendFailedMessage is the only error text ever returned to clients
	recommendFailedMessage = "Failed to generate recommendations. Please try again."
)
