// Package events provides survey event bus implementations.
//
// Implementations:
//   - redis: Redis Streams, one independent reader per subscriber
//   - memory: In-process fan-out for single instance deployments and tests
package events
