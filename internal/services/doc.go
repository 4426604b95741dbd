// Package services talks to upstream music and identity providers and turns their answers into [models.CatalogItem] lists.
//
// # Providers
//
// [SpotifyClient] and [GoogleClient] implement [Authority] on top of [oauth2.Config]: authorization URLs,
// code exchange, refresh-token grants, and a "who am I" lookup. Spotify also issues app tokens through the
// client-credentials grant. [SpotifyClient] and [JioSaavnClient] implement [Catalog]. Provider JSON is read
// with gjson so that every field access tolerates absence.
//
// # Token Broker
//
// [TokenBroker] never tracks expiry locally. Before a user token is used the profile endpoint is called with it;
// a 401 triggers one refresh-token grant and one save through the [CredentialStore]. Callers only ever see:
//   - [shared.ErrAuthExpired] : the link cannot be renewed, the user must link again
//   - [shared.ErrProviderUnavailable] : the provider could not be asked
//   - [shared.ErrNotConfigured] : client credentials are missing
//
// App tokens fail closed to "" and are cached until shortly before expiry.
//
// # Aggregation
//
// [CatalogAggregator] runs query variants in order against one catalog, over-fetching by a factor of two,
// dropping ids already seen (including a caller supplied exclusion list) and stopping once the target
// count is reached. It never returns an error.
//
// # Fallback
//
// [Discovery] composes the above as [FirstOf] chains of [Strategy] values: Spotify, then JioSaavn, then a
// built-in list. Each step yields an [Outcome] that is either [Found] or [NoResult].
package services
