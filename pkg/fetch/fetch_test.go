// pkg/fetch/fetch_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), compression libraries
// PURPOSE: Test source acquisition from directories and archives

package fetch_test

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/fetch"
	"github.com/arthur-debert/sharedpkg/pkg/filesystem"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

type entry struct {
	name    string
	body    string
	mode    int64
	dir     bool
	symlink string
}

var widgetEntries = []entry{
	{name: "widget-1.0/", dir: true, mode: 0755},
	{name: "widget-1.0/README", body: "widget", mode: 0644},
	{name: "widget-1.0/bin/tool", body: "#!/bin/sh\necho tool\n", mode: 0755},
	{name: "widget-1.0/bin/alias", symlink: "tool"},
}

func buildTar(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.symlink != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.symlink
			hdr.Mode = 0777
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func compress(t *testing.T, data []byte, kind string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch kind {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "xz":
		xw, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		w = xw
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = zw
	case "lz4":
		w = lz4.NewWriter(&buf)
	default:
		return data
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func archivePackage(t *testing.T, dir, file string, data []byte) types.Package {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return types.Package{
		Name:    "acme/widget",
		Version: "1.0",
		Source:  &types.Source{Type: types.SourceArchive, URL: file},
	}
}

func assertWidget(t *testing.T, dest string) {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dest, "README"))
	require.NoError(t, err)
	assert.Equal(t, "widget", string(content))

	info, err := os.Stat(filepath.Join(dest, "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dest, "bin", "alias"))
	require.NoError(t, err)
	assert.Equal(t, "tool", target)
}

func TestFetchTarArchives(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		compression string
	}{
		{name: "plain_tar", file: "widget.tar"},
		{name: "gzip", file: "widget.tar.gz", compression: "gzip"},
		{name: "tgz", file: "widget.tgz", compression: "gzip"},
		{name: "xz", file: "widget.tar.xz", compression: "xz"},
		{name: "zstd", file: "widget.tar.zst", compression: "zstd"},
		{name: "lz4", file: "widget.tar.lz4", compression: "lz4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			pkg := archivePackage(t, dir, tt.file, compress(t, buildTar(t, widgetEntries), tt.compression))

			dest := filepath.Join(dir, "store", "vendor", "acme", "widget", "1.0")
			require.NoError(t, fetch.New(filesystem.NewOS(), dir).Fetch(pkg, dest))
			assertWidget(t, dest)

			leftovers, err := os.ReadDir(filepath.Dir(dest))
			require.NoError(t, err)
			assert.Len(t, leftovers, 1, "staging directory should be cleaned up")
		})
	}
}

func TestFetchCpioArchive(t *testing.T) {
	var buf bytes.Buffer
	cw := cpio.NewWriter(&buf)
	for _, f := range []struct{ name, body string }{
		{"README", "widget"},
		{"lib/widget.php", "<?php"},
	} {
		require.NoError(t, cw.WriteHeader(&cpio.Header{Name: f.name, Mode: 0644, Size: int64(len(f.body))}))
		_, err := cw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, cw.Close())

	dir := t.TempDir()
	pkg := archivePackage(t, dir, "widget.cpio.gz", compress(t, buf.Bytes(), "gzip"))
	dest := filepath.Join(dir, "out")
	require.NoError(t, fetch.New(filesystem.NewOS(), dir).Fetch(pkg, dest))

	content, err := os.ReadFile(filepath.Join(dest, "lib", "widget.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php", string(content))
	assert.FileExists(t, filepath.Join(dest, "README"))
}

func TestFetchRejectsEscapingEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []entry
	}{
		{
			name:    "parent_traversal",
			entries: []entry{{name: "../evil", body: "x", mode: 0644}},
		},
		{
			name:    "nested_traversal",
			entries: []entry{{name: "pkg/../../evil", body: "x", mode: 0644}},
		},
		{
			name:    "absolute_link",
			entries: []entry{{name: "pkg/link", symlink: "/etc/passwd"}},
		},
		{
			name:    "escaping_link",
			entries: []entry{{name: "pkg/link", symlink: "../../outside"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			pkg := archivePackage(t, dir, "evil.tar", buildTar(t, tt.entries))
			dest := filepath.Join(dir, "store", "evil")

			err := fetch.New(filesystem.NewOS(), dir).Fetch(pkg, dest)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrArchive))
			assert.NoFileExists(t, filepath.Join(dir, "evil"))
			assert.NoDirExists(t, dest)
		})
	}
}

func TestFetchPathSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "packages", "views")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "views.info.yml"), []byte("name: Views"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "src", "View.php"), []byte("<?php"), 0644))

	pkg := types.Package{
		Name:    "drupal/views",
		Version: "3.0.0",
		Source:  &types.Source{Type: types.SourcePath, URL: "packages/views"},
	}
	dest := filepath.Join(dir, "store", "vendor", "drupal", "views", "3.0.0")

	require.NoError(t, fetch.New(filesystem.NewOS(), dir).Fetch(pkg, dest))
	assert.FileExists(t, filepath.Join(dest, "views.info.yml"))
	assert.FileExists(t, filepath.Join(dest, "src", "View.php"))

	// A path source keeps its own top directory layout, even with one child.
	assert.DirExists(t, filepath.Join(dest, "src"))
	assert.DirExists(t, src, "source must be left in place")
}

func TestFetchReplacesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	pkg := archivePackage(t, dir, "widget.tar", buildTar(t, widgetEntries))

	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale"), []byte("old"), 0644))

	require.NoError(t, fetch.New(filesystem.NewOS(), dir).Fetch(pkg, dest))
	assert.NoFileExists(t, filepath.Join(dest, "stale"))
	assertWidget(t, dest)
}

func TestFetchErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.rar"), []byte("x"), 0644))

	tests := []struct {
		name string
		pkg  types.Package
		code errors.ErrorCode
	}{
		{
			name: "no_source",
			pkg:  types.Package{Name: "acme/widget", Version: "1.0"},
			code: errors.ErrFetch,
		},
		{
			name: "missing_source",
			pkg: types.Package{Name: "acme/widget", Version: "1.0",
				Source: &types.Source{Type: types.SourcePath, URL: "missing"}},
			code: errors.ErrFetch,
		},
		{
			name: "unsupported_archive",
			pkg: types.Package{Name: "acme/widget", Version: "1.0",
				Source: &types.Source{Type: types.SourceArchive, URL: "widget.rar"}},
			code: errors.ErrArchive,
		},
		{
			name: "unknown_source_type",
			pkg: types.Package{Name: "acme/widget", Version: "1.0",
				Source: &types.Source{Type: "git", URL: "."}},
			code: errors.ErrFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fetch.New(filesystem.NewOS(), dir).Fetch(tt.pkg, filepath.Join(dir, "dest", tt.name))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}
