// Package auth issues and checks the credentials used by the HTTP API.
//
// Clients exchange the configured API key for a short-lived HS256 JWT
// access token. The token carries a Role; each route requires a
// Permission and HasPermission maps one to the other:
//
//	viewer   - read devices, tasks, status and logs
//	operator - everything a viewer can, plus control the simulation
package auth
