// Package zip bundles the videos of one generation into a single download.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

type File struct {
	Name     string
	Modified time.Time
	Data     []byte
}

// WriteArchive writes files to w as a zip archive. Videos are already
// compressed, so entries are stored rather than deflated.
func WriteArchive(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Store, Modified: f.Modified}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}
