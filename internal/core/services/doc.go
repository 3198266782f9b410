// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain, the port interfaces and the logger;
// concrete adapters are injected by the CLI wiring.
package services
