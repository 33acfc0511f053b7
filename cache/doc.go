// Package cache provides the TTL response cache used by the forum client.
//
// A Store maps a closed set of keys to a single Entry each. MemoryStore
// lives for the process; RedisStore shares entries between processes.
// Loader layers the read-through algorithm on top: valid entries are
// served without a network call, concurrent misses share one fetch, and a
// failed fetch falls back to the previous (possibly expired) data.
package cache
