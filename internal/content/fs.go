package content

import (
	"io/fs"

	appweb "bikeshare/web"
)

// Embedded returns the content directory compiled into the binary.
func Embedded() (fs.FS, error) {
	return fs.Sub(appweb.ContentFS, "content")
}
