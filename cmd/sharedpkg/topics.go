package sharedpkg

import (
	"embed"
	"io/fs"
)

//go:embed topics
var topicFiles embed.FS

// helpTopics is the embedded topics directory
func helpTopics() fs.FS {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return nil
	}
	return sub
}
