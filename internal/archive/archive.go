// Package archive implements the optional archive-compression step for
// Translate and Outbound channels (the archive.compress config key),
// using klauspost/compress's gzip implementation.
package archive

import (
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Store moves src to dstDir/name, compressing it with gzip (producing
// dstDir/name.gz) when compress is true, or copying it verbatim otherwise.
// The source file is removed once the destination copy is durable.
func Store(src, dstDir, name string, compress bool) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	destName := name
	if compress {
		destName += ".gz"
	}
	dstPath := dstDir + string(os.PathSeparator) + destName

	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}

	if compress {
		gz := gzip.NewWriter(out)
		if _, err := io.Copy(gz, in); err != nil {
			gz.Close()
			out.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			out.Close()
			return err
		}
	} else if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
