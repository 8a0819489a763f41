package adoption

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/edgelink-io/edgelink-core/internal/jsontree"
)

// systemSnapshot collects the resource metrics the registry displays for
// capacity monitoring. Every metric is best-effort: anything unreadable is
// left out of the section.
func systemSnapshot() *jsontree.Object {
	section := jsontree.New()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	section.Set("heapUsedBytes", mem.HeapAlloc)
	section.Set("heapFreeBytes", mem.HeapIdle)

	// The running binary is the closest analogue to an embedded sketch
	// partition, reported under the key registry consumers already match.
	if path, err := os.Executable(); err == nil {
		if info, err := os.Stat(path); err == nil {
			section.Set("sketchSpaceUsedBytes", uint64(info.Size()))
		}
	}

	var fs unix.Statfs_t
	if err := unix.Statfs("/", &fs); err == nil {
		blockSize := uint64(fs.Bsize)
		total := fs.Blocks * blockSize
		available := fs.Bavail * blockSize
		section.Set("fileSystemUsedBytes", total-available)
		section.Set("fileSystemTotalBytes", total)
	}

	return section
}
