// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. A new Store is created for every run,
// so nothing is ever shared between concurrent runs.
package inmemorystore
