// Package ports declares the seams of the service. Handlers call
// TaskService; the service calls a TaskStore and a TaskEventPublisher,
// chosen at startup by configuration.
package ports
