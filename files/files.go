// Package files implements utility routines for inspecting and preparing
// checkout directories.
package files

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
)

func fileMode(elem ...string) (os.FileMode, error) {
	file, err := os.Stat(filepath.Join(elem...))
	if err != nil {
		return 0, err
	}

	return file.Mode(), nil
}

// Exists reports whether the path names a regular file.
func Exists(pathElems ...string) (bool, error) {
	mode, err := fileMode(pathElems...)
	if notExistErr(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mode.IsRegular(), nil
}

// ExistsFolder reports whether the path names a directory.
func ExistsFolder(pathElems ...string) (bool, error) {
	mode, err := fileMode(pathElems...)
	if notExistErr(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mode.IsDir(), nil
}

// ExistsAny reports whether anything at all exists at the path.
func ExistsAny(pathElems ...string) bool {
	_, err := os.Stat(filepath.Join(pathElems...))
	return err == nil
}

// Mkdir creates the directory and any missing parents. It does not fail when
// the directory already exists.
func Mkdir(pathElems ...string) error {
	name := filepath.Join(pathElems...)
	log.WithField("dir", name).Debug("creating directory")
	return os.MkdirAll(name, 0755)
}

// os.IsNotExist doesn't handle non-existent parent directories e.g.
// stat /some/path/without/a/parent.json: not a directory
func notExistErr(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	if _, ok := err.(*os.PathError); ok {
		return true
	}
	return false
}

// Rm removes the path and everything below it.
func Rm(pathElems ...string) error {
	name := filepath.Join(pathElems...)
	log.WithField("path", name).Debug("removing")
	return os.RemoveAll(name)
}

// IsWithin reports whether target is dir itself or lies below it, after both
// are cleaned.
func IsWithin(dir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !hasDotDotPrefix(rel))
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
