package pdf

import (
	"math"
	"os"
	"path/filepath"
)

// FileInfo is a best-effort descriptor of a document on disk.
type FileInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Size   int64   `json:"size"`
	Pages  int     `json:"pages"`
	Exists bool    `json:"exists"`
	SizeMB float64 `json:"size_mb,omitempty"`
}

// Info reports page counts and sizes for display and statistics.
type Info struct {
	counter PageCounter
}

// NewInfo creates an Info reading page counts through counter.
func NewInfo(counter PageCounter) *Info {
	return &Info{counter: counter}
}

// PageCount returns the number of pages, or 0 on any failure.
func (i *Info) PageCount(path string) int {
	if _, err := os.Stat(path); err != nil {
		return 0
	}
	n, err := i.counter.PageCount(path)
	if err != nil {
		return 0
	}
	return n
}

// FileInfo describes path. A missing file yields a zero record with Exists=false.
func (i *Info) FileInfo(path string) FileInfo {
	fi := FileInfo{Name: filepath.Base(path), Path: path}

	st, err := os.Stat(path)
	if err != nil {
		return fi
	}

	fi.Exists = true
	fi.Size = st.Size()
	fi.Pages = i.PageCount(path)
	fi.SizeMB = math.Round(float64(st.Size())/(1024*1024)*100) / 100
	return fi
}
