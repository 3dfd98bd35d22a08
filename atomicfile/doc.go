/*
Package atomicfile replaces a file in a way that readers either see
the old content or the new content, never a partial write.

Data goes to a temporary file in the destination directory. Close
flushes and fsyncs it, renames it over the destination and fsyncs
the directory. If any write fails, or Cancel is called before Close,
the temporary file is removed and the destination is not touched.

	err := atomicfile.WriteFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})

Table files and their structural index are written this way, and so
are files restored from a backup.
*/
package atomicfile
