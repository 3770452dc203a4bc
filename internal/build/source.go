package build

import (
	"archive/tar"
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Ignore files consulted when copying the source tree, in order of
// precedence.
var ignoreFiles = []string{".slimignore", ".gitignore"}

// Patterns excluded from every source copy.
var defaultIgnorePatterns = []string{".git/"}

// Streams the source tree into the container's working directory.
func (p *pipeline) copySource(ctx context.Context, ctr Container, workdir string) error {
	src := filepath.Join(p.root, p.recipe.Source())

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: source %s is not a directory", ErrFileSystemOperation, src)
	}

	matcher, err := loadIgnoreMatcher(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	slog.Debug("copying source tree", "from", src, "to", workdir)

	pr, pw := io.Pipe()
	errc := make(chan error, 1)

	go func() {
		err := writeSourceTar(pw, src, matcher)
		pw.CloseWithError(err)
		errc <- err
	}()

	if err := ctr.CopyTo(ctx, pr, workdir); err != nil {
		pr.CloseWithError(err)
		<-errc
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	if err := <-errc; err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Builds the ignore matcher for a source directory.
//
// The first ignore file found is used, its patterns layered on top of the
// defaults. With no ignore file, only the defaults apply.
func loadIgnoreMatcher(dir string) (*ignore.GitIgnore, error) {
	lines := append([]string(nil), defaultIgnorePatterns...)

	for _, name := range ignoreFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(strings.NewReader(string(data)))
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		break
	}

	return ignore.CompileIgnoreLines(lines...), nil
}

// Writes the directory tree rooted at src as a tar stream.
//
// Entries are named relative to src so the tree unpacks directly into the
// destination directory. Ignored paths are skipped; ignored directories
// are not descended into.
func writeSourceTar(w io.Writer, src string, matcher *ignore.GitIgnore) error {
	tw := tar.NewWriter(w)

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		name := filepath.ToSlash(rel)
		matchName := name
		if d.IsDir() {
			matchName += "/"
		}
		if matcher.MatchesPath(matchName) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		return writeTarEntry(tw, path, name, d)
	})
	if err != nil {
		return err
	}

	return tw.Close()
}

// Writes a single filesystem entry to the tar stream.
func writeTarEntry(tw *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	link := ""
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Pipes a tar stream of path from one container into a directory in
// another, without buffering the archive on the host.
func pipeCopy(ctx context.Context, from, to Container, path, destDir string) error {
	pr, pw := io.Pipe()
	errc := make(chan error, 1)

	go func() {
		err := from.CopyFrom(ctx, pw, path)
		pw.CloseWithError(err)
		errc <- err
	}()

	if err := to.CopyTo(ctx, pr, destDir); err != nil {
		pr.CloseWithError(err)
		<-errc
		return err
	}

	return <-errc
}
