// Package api provides the client for the Open Notify "ISS now" endpoint.
//
// Endpoint:
//   - http://api.open-notify.org/iss-now.json
//
// Response shape:
//
//	{"message": "success", "timestamp": 1700000000,
//	 "iss_position": {"latitude": "12.34", "longitude": "-56.78"}}
//
// The response is untrusted input. Every field is validated before a
// model.Position is built from it; failures are reported as errors that
// wrap one of the sentinel errors below so callers can classify them.
package api
