package domain

// BuildIdempotencyKey scopes a client-supplied Idempotency-Key to the actor
// that sent it, so two actors can reuse the same key.
func BuildIdempotencyKey(actorID string, key string) string {
	return "transfer:" + actorID + ":" + key
}
