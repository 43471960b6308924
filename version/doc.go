// Package version exposes build information of the couchview binary.
//
// Values are injected with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/ncobase/couchview/version.Version=1.2.3 \
//	  -X github.com/ncobase/couchview/version.Branch=main \
//	  -X github.com/ncobase/couchview/version.Revision=abc123 \
//	  -X github.com/ncobase/couchview/version.BuiltAt=2024-01-01T00:00:00Z" ./cmd
//
// Without them the module version and VCS stamp recorded by the go tool
// are used.
package version
