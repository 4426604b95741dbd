// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [UserRepository] : User account persistence with email-based lookups and soft deletes
//   - [CredentialRepository] : the credential store behind the token broker; one row per (user, provider)
//   - [EmotionLogRepository] : reported emotions, newest first
//   - [LikedSongRepository] : liked songs with (user, source, external id) deduplication
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Concurrent saves of the same credential are last-write-wins; no row versioning is applied.
package repositories
