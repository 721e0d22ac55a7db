package util

var (
	version = "2.8.0"
)

// GetVersion returns the release version this endpoint reports to peers.
func GetVersion() string {
	return version
}
