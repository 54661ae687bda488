package checkpointer

import (
	"fmt"
	"path/filepath"
	"time"
)

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	name      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	f.i++
	return fmt.Sprintf("%v-%04d%v", f.name, f.i, f.extension)
}

// FilenameEnumerator returns a function which will return filenames
// in dir with a counter integer suffix. Each time the returned function
// is called, the filename counter suffix will be one higher than on the
// previous call, starting at start+1.
func FilenameEnumerator(start int, dir, filename,
	extension string) func() string {
	enum := fileEnumerator{
		i:         start,
		name:      filepath.Join(dir, filename),
		extension: extension,
	}

	return enum.filename
}

// FileTimer returns a function which will return filenames in dir with
// the current time as a suffix.
func FileTimer(dir, filename, extension string) func() string {
	return func() string {
		stamp := time.Now().UTC().Format("20060102T150405.000000000")
		return fmt.Sprintf("%v-%v%v", filepath.Join(dir, filename), stamp,
			extension)
	}
}
