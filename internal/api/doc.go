// Package api provides the HTTP REST API and WebSocket feed for the
// simulator.
//
// Every operation goes through a Controller, which the console implements
// by handing the work to its own loop. The API therefore never touches
// devices, the scheduler or the broadcaster directly.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// # Authentication
//
// POST /api/v1/auth/token exchanges the configured API key for a JWT.
// Other routes, except /health and /ws, need "Authorization: Bearer
// <token>". The WebSocket is authenticated with a single-use ticket from
// POST /api/v1/auth/ws-ticket.
//
// # Events
//
// The Hub is attached to every device as a listener and subscribed to the
// sensor broadcaster. Clients subscribe to the channels
// device.state_changed, thermostat.policy_applied (device:read) and
// sensor.reading (simulation:read). A subscribe naming an unknown channel, or
// one the ticket's role cannot read, is rejected as a whole.
package api
