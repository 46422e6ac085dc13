// Package storage provides result storage implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization and TTL
//   - memory: In-memory with TTL, the default without Redis
package storage
