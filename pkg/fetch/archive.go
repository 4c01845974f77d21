package fetch

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Container formats
const (
	containerTar  = "tar"
	containerCpio = "cpio"
)

// Compression formats
const (
	compressionNone = ""
	compressionGzip = "gzip"
	compressionXz   = "xz"
	compressionZstd = "zstd"
	compressionLz4  = "lz4"
)

type archiveFormat struct {
	container   string
	compression string
}

var suffixes = []struct {
	suffix string
	format archiveFormat
}{
	{".tar.gz", archiveFormat{containerTar, compressionGzip}},
	{".tgz", archiveFormat{containerTar, compressionGzip}},
	{".tar.xz", archiveFormat{containerTar, compressionXz}},
	{".txz", archiveFormat{containerTar, compressionXz}},
	{".tar.zst", archiveFormat{containerTar, compressionZstd}},
	{".tzst", archiveFormat{containerTar, compressionZstd}},
	{".tar.lz4", archiveFormat{containerTar, compressionLz4}},
	{".tar", archiveFormat{containerTar, compressionNone}},
	{".cpio.gz", archiveFormat{containerCpio, compressionGzip}},
	{".cpio.xz", archiveFormat{containerCpio, compressionXz}},
	{".cpio.zst", archiveFormat{containerCpio, compressionZstd}},
	{".cpio", archiveFormat{containerCpio, compressionNone}},
}

// detectFormat picks the archive format from the file name.
func detectFormat(name string) (archiveFormat, bool) {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format, true
		}
	}
	return archiveFormat{}, false
}

// extractFile unpacks the archive at src into dest.
func extractFile(src, dest string) error {
	format, ok := detectFormat(src)
	if !ok {
		return errors.Newf(errors.ErrArchive, "unsupported archive format: %s", filepath.Base(src)).
			WithDetail("path", src)
	}

	file, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "failed to open archive %s", src).
			WithDetail("path", src)
	}
	defer func() { _ = file.Close() }()

	reader, closeReader, err := decompress(file, format.compression)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "failed to read %s stream of %s", format.compression, src).
			WithDetail("path", src)
	}
	defer closeReader()

	switch format.container {
	case containerCpio:
		err = extractCpio(reader, dest)
	default:
		err = extractTar(reader, dest)
	}
	if err != nil {
		if errors.GetErrorCode(err) == errors.ErrUnknown {
			return errors.Wrapf(err, errors.ErrArchive, "failed to extract %s", src).
				WithDetail("path", src)
		}
		return err
	}
	return nil
}

func decompress(r io.Reader, compression string) (io.Reader, func(), error) {
	switch compression {
	case compressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case compressionXz:
		x, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return x, func() {}, nil
	case compressionZstd:
		zs, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zs, zs.Close, nil
	case compressionLz4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}

// entryPath maps an archive entry name into dest, rejecting names that would
// land outside it.
func entryPath(dest, name string) (string, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(name), "./")
	if clean == "" || clean == "." {
		return dest, nil
	}
	if err := paths.ValidateRelativePath(clean); err != nil {
		return "", errors.Wrapf(err, errors.ErrArchive, "archive entry %q escapes the destination", name).
			WithDetail("entry", name)
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

// linkTargetInside rejects symlinks whose target resolves outside dest.
func linkTargetInside(dest, link, target string) error {
	resolved := target
	if !filepath.IsAbs(target) {
		resolved = filepath.Join(filepath.Dir(link), target)
	}
	if filepath.IsAbs(target) || !paths.IsWithin(dest, resolved) {
		return errors.Newf(errors.ErrArchive, "archive link %s points outside the package", link).
			WithDetail("entry", link).
			WithDetail("target", target)
	}
	return nil
}

func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := entryPath(dest, header.Name)
		if err != nil {
			return err
		}
		perm := os.FileMode(header.Mode).Perm()

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, perm|0700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, perm); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := linkTargetInside(dest, target, header.Linkname); err != nil {
				return err
			}
			if err := writeLink(target, header.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			from, err := entryPath(dest, header.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Link(from, target); err != nil {
				return err
			}
		default:
			// Devices, fifos and pax metadata are not package content.
		}
	}
}

func extractCpio(r io.Reader, dest string) error {
	cr := cpio.NewReader(r)
	for {
		header, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header.Name == "TRAILER!!!" {
			return nil
		}

		target, err := entryPath(dest, header.Name)
		if err != nil {
			return err
		}
		mode := header.FileInfo().Mode()

		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, mode.Perm()|0700); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := writeEntry(target, cr, mode.Perm()); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			if err := linkTargetInside(dest, target, header.Linkname); err != nil {
				return err
			}
			if err := writeLink(target, header.Linkname); err != nil {
				return err
			}
		}
	}
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(target, perm)
}

func writeLink(target, linkname string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	_ = os.Remove(target)
	return os.Symlink(linkname, target)
}
