// Package storage manages the local working directory media is
// downloaded into before it is archived.
//
// Each creator gets its own Manager rooted at an explicit directory, so
// concurrent creators never share files and the process working
// directory is never changed. Writes go through a temporary file and an
// atomic rename.
//
//	m, err := storage.NewManager(filepath.Join(outputDir, secUID))
//	path, err := m.Save("clip.mp4", func(w io.Writer) error {
//	    _, err := client.Download(ctx, url, w)
//	    return err
//	})
package storage
