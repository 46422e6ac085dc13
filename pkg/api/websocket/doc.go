// Package websocket provides the WebSocket push stream of session progress.
//
// Clients connect to /api/v1/sessions/{id}/ws and receive every progress
// event of the session as a JSON text message, starting with the latest
// snapshot. The server closes the connection with a normal closure after
// the terminal event.
package websocket
