// Package grpc serves the grpc.health.v1 service used by load balancer and Kubernetes probes.
package grpc
