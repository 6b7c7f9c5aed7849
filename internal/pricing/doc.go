// Package pricing implements the price resolver.
//
// The resolver maps a calendar day to the asset's market price through a
// process-lifetime cache backed by the quote provider. It owns the
// fetch-failure policy:
//   - point strategy: provider failures degrade to the zero price for that
//     call and leave the cache unpopulated so a later call retries
//   - bulk strategy: one range call warms the whole cache; a failed warm is
//     a hard error because the cache state cannot be decided
//
// Outbound calls are throttled to one per configured cooldown and coalesced
// so concurrent resolutions never hammer the provider.
package pricing
