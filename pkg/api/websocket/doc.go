// Package websocket provides a live feed of survey events.
//
// Clients connect to /surveys/:code/ws and receive one JSON message per
// event of that survey (selected, started, answered, completed, already
// done). Events carry no session identifiers.
package websocket
