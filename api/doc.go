// Package api exposes the task and user services over HTTP with fiber.
//
// Routes live under /api/v1/todo. Service errors are mapped to status codes
// by StatusFor: not found is 404, access denied is 403, duplicates and
// validation failures are 400 and a rejected status change is 409.
package api
