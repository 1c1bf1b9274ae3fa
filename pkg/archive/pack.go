// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"
	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"gitlab.com/tozd/go/errors"
)

// 📦 Pack writes the tree rooted at srcDir into a single archive at
// outPath. Entry names are relative to srcDir. Symlinks are stored as
// links, not followed.
func Pack(ctx context.Context, algo Algorithm, srcDir, outPath string) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("archive", outPath).Str("algorithm", string(algo)).Msg("creating archive")

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Errorf("creating archive file %q: %w", outPath, err)
	}

	if err := packInto(algo, srcDir, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing archive file %q: %w", outPath, err)
	}
	return nil
}

func packInto(algo Algorithm, srcDir string, out io.Writer) error {
	if algo == Zip {
		return packZip(srcDir, out)
	}

	// The tar variants differ only in the compression layer.
	var compressed io.WriteCloser
	var err error
	switch algo {
	case Tar:
		compressed = nopWriteCloser{out}
	case TarGz:
		compressed = gzip.NewWriter(out)
	case TarBz2:
		compressed, err = bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
		if err != nil {
			return errors.Errorf("creating bzip2 writer: %w", err)
		}
	case TarXz:
		compressed, err = xz.NewWriter(out)
		if err != nil {
			return errors.Errorf("creating xz writer: %w", err)
		}
	default:
		return errors.Errorf("unknown compression algorithm %q", algo)
	}

	if err := packTar(srcDir, compressed); err != nil {
		return err
	}
	if err := compressed.Close(); err != nil {
		return errors.Errorf("flushing compression: %w", err)
	}
	return nil
}

func packZip(srcDir string, out io.Writer) error {
	zw := zip.NewWriter(out)

	err := walkTree(srcDir, func(rel string, path string, info os.FileInfo) error {
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return errors.Errorf("building zip header for %q: %w", rel, err)
		}
		hdr.Name = rel
		if info.IsDir() {
			hdr.Name += "/"
			_, err := zw.CreateHeader(hdr)
			return errors.WithStack(err)
		}
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return errors.Errorf("adding %q to zip: %w", rel, err)
		}
		return copyFileInto(w, path)
	})
	if err != nil {
		return err
	}
	return errors.WithStack(zw.Close())
}

func packTar(srcDir string, out io.Writer) error {
	tw := tar.NewWriter(out)

	err := walkTree(srcDir, func(rel string, path string, info os.FileInfo) error {
		link := ""
		if info.Mode()&fs.ModeSymlink != 0 {
			var err error
			link, err = os.Readlink(path)
			if err != nil {
				return errors.Errorf("reading link %q: %w", rel, err)
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return errors.Errorf("building tar header for %q: %w", rel, err)
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Errorf("writing tar header for %q: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFileInto(tw, path)
	})
	if err != nil {
		return err
	}
	return errors.WithStack(tw.Close())
}

// walkTree visits every entry under srcDir except the root itself, handing
// the callback the slash-separated relative name, absolute path and Lstat info.
func walkTree(srcDir string, fn func(rel, path string, info os.FileInfo) error) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %q: %w", path, err)
		}
		if path == srcDir {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return errors.Errorf("relativizing %q: %w", path, err)
		}
		info, err := d.Info()
		if err != nil {
			return errors.Errorf("stat %q: %w", path, err)
		}
		return fn(filepath.ToSlash(rel), path, info)
	})
}

func copyFileInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return errors.Errorf("archiving %q: %w", path, err)
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
