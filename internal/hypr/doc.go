// Package hypr implements the client side of the compositor's event socket
// protocol: locating the socket, building the subscription request, and
// classifying the newline-delimited "name>>payload" lines it emits.
package hypr
