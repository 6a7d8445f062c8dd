// Package contextstore provides TTL key-value backends for per-user
// conversational state. Three record tiers share a backend but never a key:
// the 7-day user context, the 24-hour agent memory snapshot, and the
// 24-hour rolling conversation log.
package contextstore

// Key layout shared by all backends.
func userContextKey(userID string) string { return "user_context:" + userID }

func agentMemoryKey(userID string) string { return "agent_memory:" + userID }

func conversationKey(userID, sessionID string) string {
	return "conversation:" + userID + ":" + sessionID
}
