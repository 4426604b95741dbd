// Package models defines domain entities and persistence interfaces for the moodmusic backend.
//
// The package contains two categories of types:
//
// 1. Ephemeral values: never persisted, produced fresh per request
//   - [CatalogItem] : one normalized music entity returned by an upstream catalog
//   - [Provider] : which external identity/catalog system a value came from
//
// 2. Persistent entities: database-backed models
//   - [User] : local accounts with bcrypt password hashes
//   - [Credential] : a user's linked third-party tokens and profile snapshot, one per provider
//   - [EmotionLog] : reported emotions; the latest one seeds recommendations
//   - [LikedSong] : songs a user liked, keyed by source and external id
//
// [User] implements the [Model] interface; the [Repository] interface defines standard CRUD operations for it.
package models
