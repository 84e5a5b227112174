// Package facade builds the single runtime an nsock program runs on: one
// reactor plus its logger, metrics, debug probes and socket defaults.
package facade
