// Package util holds small helpers shared by the client packages.
package util
