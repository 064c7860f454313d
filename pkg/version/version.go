// Package version carries build metadata injected at link time:
//
//	-X 'github.com/testbridge/testbridge/pkg/version.Version=v1.0.0'
//	-X 'github.com/testbridge/testbridge/pkg/version.CommitHash=abc123'
//	-X 'github.com/testbridge/testbridge/pkg/version.BuildDate=2026-01-01T00:00:00Z'
package version

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the structured form of the build metadata.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
}

func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
	}
}
