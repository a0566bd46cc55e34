// Package storage provides session storage implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization and TTL
//   - memory: In-memory map with TTL and a background sweeper
package storage
