// Package ports defines the interfaces between the survey flow and its
// adapters: session storage, the event bus and metrics.
package ports
