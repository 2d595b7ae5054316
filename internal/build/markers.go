package build

import "strings"

// Lines written by the session itself, as opposed to compiler output.
const (
	MarkerStarted   = "[build started]"
	MarkerInstall   = "[pip install]"
	MarkerCancelled = "[build cancelled]"
	MarkerFinished  = "[build finished]"
	MarkerError     = "[build error]"
	MarkerArtifact  = "[artifact]"
)

var markers = []string{MarkerStarted, MarkerInstall, MarkerCancelled, MarkerFinished, MarkerError, MarkerArtifact}

// IsMarker reports whether line was written by the session.
func IsMarker(line string) bool {
	for _, m := range markers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}
