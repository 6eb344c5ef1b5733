// Package mock provides test doubles for the ai collaborator interfaces.
//
// The doubles are deterministic by default so pipeline tests are
// reproducible, and expose function fields for behavior injection plus call
// counters for assertions.
package mock
