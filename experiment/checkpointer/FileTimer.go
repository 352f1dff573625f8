package checkpointer

import (
	"fmt"
	"path/filepath"
	"time"
)

// FileTimer returns a function which will return filenames in dir
// suffixed with the number of nanoseconds since January 1, 1970.
func FileTimer(dir, name, extension string) func() string {
	return fileTimer(dir, name, extension, time.Now)
}

func fileTimer(dir, name, extension string,
	now func() time.Time) func() string {
	return func() string {
		return filepath.Join(dir, fmt.Sprintf("%v-%v%v", name,
			now().UnixNano(), extension))
	}
}
