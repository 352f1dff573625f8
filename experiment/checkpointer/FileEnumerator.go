package checkpointer

import (
	"fmt"
	"path/filepath"
)

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	dir       string
	name      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	f.i++
	return filepath.Join(f.dir, fmt.Sprintf("%v%v%v", f.name, f.i,
		f.extension))
}

// FilenameEnumerator returns a function which will return filenames
// in dir with a counter integer suffix. The first call returns the
// suffix start+1, and each later call returns a suffix one higher than
// the previous call. The extension should include its leading dot.
func FilenameEnumerator(start int, dir, name, extension string) func() string {
	enum := fileEnumerator{i: start, dir: dir, name: name, extension: extension}

	return enum.filename
}
