// Package api holds the small set of types shared between the reactor,
// the TCP socket layer and their consumers: readiness masks, socket states
// and sentinel errors.
package api
