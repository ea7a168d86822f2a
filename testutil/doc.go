// Package testutil starts throwaway Postgres and Redis containers and seeds
// trivia data for integration tests. It is only built with the integration
// tag:
//
//	go test -tags integration ./...
//
// Tests skip when Docker is not available.
package testutil
