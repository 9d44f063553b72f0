// Package component defines the lifecycle contract for long-lived pieces
// of a program, such as a configured API client.
//
// A Component is started once, reports health while running, and is
// stopped on shutdown. StartAll and StopAll drive a set of components in
// order and in reverse order.
package component
