package vcs

import (
	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/files"
)

// ErrNoCheckout is returned by Detect for directories without VCS metadata.
var ErrNoCheckout = errors.New("directory is not a checkout")

// Detect identifies the checkout rooted at dir by its metadata folder.
func Detect(dir string) (Type, error) {
	for _, t := range Types {
		ok, err := files.ExistsFolder(dir, MetadataFolder(t))
		if err != nil {
			return 0, err
		}
		if ok {
			return t, nil
		}
	}
	return 0, ErrNoCheckout
}
