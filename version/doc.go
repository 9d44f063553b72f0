// Package version carries build metadata and the default User-Agent the
// client sends when none is configured.
//
// Values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/coinbase-samples/core-go/version.Version=1.2.0"
package version
