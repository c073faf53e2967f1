// Package core defines the domain types shared across the relay: conversation
// turns, inbound mention events, completion request/result shapes and the
// error taxonomy for the upstream completion API. Types here are plain data;
// behavior lives in the session, completion and dispatch packages.
package core
