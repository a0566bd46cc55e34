// Package prometheus records survey flow counters for the /metrics endpoint.
package prometheus
