// Package domain holds the service-level shapes of users and tasks, the task
// status machine and the error taxonomy shared by the service and HTTP layers.
//
// Values in this package are what the cache stores: they are plain structs
// with msgpack tags so that a cached copy decodes into exactly the value the
// read path would have computed from the store.
package domain
