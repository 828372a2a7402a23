// Package service implements the task and user operations on top of the
// store adapters and the cache-aside policy.
//
// Reads go through cacheaside.Read. Writes commit to the store first and then
// evict the regions they made stale:
//
//	CreateTask   every cached window of the owner, and the owner's count
//	StartTask    task-by-id
//	EndTask      task-by-id
//	DeleteUser   user-by-id, the owner's windows and count
//	CreateUser   nothing
//
// StartTask and EndTask are preceded by an ownership check that reads the task
// through the same cached path as GetTask.
package service
