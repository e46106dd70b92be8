package vcs

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/apex/log"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/config"
	"gopkg.in/src-d/go-git.v4/plumbing"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

const remoteName = "origin"

var fullHash = regexp.MustCompile(`^[0-9a-f]{40}$`)

// GitClient implements Client with go-git.
type GitClient struct{}

func (GitClient) Type() Type { return Git }

// Import implements Client.
func (GitClient) Import(dir string, opts ImportOptions) (string, error) {
	var out bytes.Buffer
	exists, err := prepare(dir, Git, opts.Force)
	if err != nil {
		return "", err
	}

	var r *git.Repository
	if exists {
		r, err = openAndFetch(dir, opts, &out)
	} else {
		r, err = clone(dir, opts, &out)
	}
	if err != nil {
		return out.String(), err
	}

	if opts.Version != "" {
		if err := checkout(r, opts, &out); err != nil {
			return out.String(), err
		}
	} else if exists {
		if err := pull(r, "", opts, &out); err != nil {
			return out.String(), err
		}
	}

	repo := GitRepository{r: r, dir: dir}
	head, err := repo.Head()
	if err != nil {
		return out.String(), err
	}
	fmt.Fprintf(&out, "HEAD is now at %s\n", head)
	return out.String(), nil
}

func clone(dir string, opts ImportOptions, out *bytes.Buffer) (*git.Repository, error) {
	log.WithFields(log.Fields{"url": opts.URL, "dir": dir}).Debug("cloning")
	cloneOpts := git.CloneOptions{
		URL:        opts.URL,
		RemoteName: remoteName,
		Progress:   out,
	}
	if opts.Recursive {
		cloneOpts.RecurseSubmodules = git.DefaultSubmoduleRecursionDepth
	}

	if opts.Shallow && opts.Version != "" && !fullHash.MatchString(opts.Version) {
		// A shallow clone needs the ref up front: try it as a branch, then as a tag.
		for _, ref := range []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(opts.Version),
			plumbing.NewTagReferenceName(opts.Version),
		} {
			shallow := cloneOpts
			shallow.Depth = 1
			shallow.SingleBranch = true
			shallow.ReferenceName = ref
			r, err := git.PlainClone(dir, false, &shallow)
			if err == nil {
				fmt.Fprintf(out, "Cloned %s (%s)\n", opts.URL, ref.Short())
				return r, nil
			}
			log.WithError(err).WithField("ref", ref).Debug("shallow clone failed")
			os.RemoveAll(dir)
		}
	} else if opts.Shallow && opts.Version == "" {
		cloneOpts.Depth = 1
	}

	r, err := git.PlainClone(dir, false, &cloneOpts)
	if err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrapf(err, "could not clone %s", opts.URL)
	}
	fmt.Fprintf(out, "Cloned %s\n", opts.URL)
	return r, nil
}

func openAndFetch(dir string, opts ImportOptions, out *bytes.Buffer) (*git.Repository, error) {
	r, err := git.PlainOpen(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open git repository at %s", dir)
	}

	repo := GitRepository{r: r, dir: dir}
	if current := repo.Project(); current != opts.URL {
		if !opts.Force {
			return nil, &errors.Error{
				Type:            errors.User,
				Message:         fmt.Sprintf("checkout at %s has remote %q, expected %q", dir, current, opts.URL),
				Troubleshooting: "Remove the directory or run sync with --clean to replace the checkout.",
			}
		}
		if current != "" {
			if err := r.DeleteRemote(remoteName); err != nil {
				return nil, errors.Wrap(err, "could not remove mismatching remote")
			}
		}
		if _, err := r.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{opts.URL}}); err != nil {
			return nil, errors.Wrap(err, "could not add remote")
		}
		fmt.Fprintf(out, "Replaced remote %q with %s\n", current, opts.URL)
	}

	log.WithFields(log.Fields{"url": opts.URL, "dir": dir}).Debug("fetching")
	err = r.Fetch(&git.FetchOptions{
		RemoteName: remoteName,
		Progress:   out,
		Tags:       git.AllTags,
		Force:      true,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return nil, errors.Wrapf(err, "could not fetch %s", opts.URL)
	}
	return r, nil
}

// checkout moves the worktree to opts.Version. Remote branches are checked out
// as local branches and fast-forwarded; anything else leaves a detached HEAD.
func checkout(r *git.Repository, opts ImportOptions, out *bytes.Buffer) error {
	w, err := r.Worktree()
	if err != nil {
		return errors.Wrap(err, "could not open worktree")
	}

	remoteRef, err := r.Reference(plumbing.NewRemoteReferenceName(remoteName, opts.Version), true)
	if err == nil {
		local := plumbing.NewBranchReferenceName(opts.Version)
		_, err := r.Reference(local, true)
		create := err == plumbing.ErrReferenceNotFound
		co := git.CheckoutOptions{Branch: local, Create: create, Force: opts.Force}
		if create {
			co.Hash = remoteRef.Hash()
		}
		if err := w.Checkout(&co); err != nil {
			return errors.Wrapf(err, "could not check out branch %s", opts.Version)
		}
		fmt.Fprintf(out, "Switched to branch %s\n", opts.Version)
		if create {
			return nil
		}
		return pull(r, opts.Version, opts, out)
	}

	var hash plumbing.Hash
	if fullHash.MatchString(opts.Version) {
		hash = plumbing.NewHash(opts.Version)
	} else {
		h, err := r.ResolveRevision(plumbing.Revision(opts.Version))
		if err != nil {
			return errors.Wrapf(err, "could not find version %s", opts.Version)
		}
		hash = *h
	}
	if err := w.Checkout(&git.CheckoutOptions{Hash: hash, Force: opts.Force}); err != nil {
		return errors.Wrapf(err, "could not check out %s", opts.Version)
	}
	fmt.Fprintf(out, "Checked out %s\n", opts.Version)
	return nil
}

// pull fast-forwards the current branch. A detached HEAD is left alone.
func pull(r *git.Repository, branch string, opts ImportOptions, out *bytes.Buffer) error {
	head, err := r.Head()
	if err != nil {
		return errors.Wrap(err, "could not read HEAD")
	}
	if !head.Name().IsBranch() {
		fmt.Fprintln(out, "HEAD is detached, not updating")
		return nil
	}
	if branch == "" {
		branch = head.Name().Short()
	}
	w, err := r.Worktree()
	if err != nil {
		return errors.Wrap(err, "could not open worktree")
	}
	err = w.Pull(&git.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		Progress:      out,
		Force:         opts.Force,
	})
	switch err {
	case nil:
		fmt.Fprintf(out, "Fast-forwarded %s\n", branch)
		return nil
	case git.NoErrAlreadyUpToDate:
		fmt.Fprintf(out, "Already up to date with %s/%s\n", remoteName, branch)
		return nil
	default:
		return errors.Wrapf(err, "could not update branch %s", branch)
	}
}

// GitRepository reads metadata from an existing git checkout.
type GitRepository struct {
	r   *git.Repository
	dir string
}

// NewGitRepository opens the checkout at dir.
func NewGitRepository(dir string) (*GitRepository, error) {
	r, err := git.PlainOpen(dir)
	if err != nil {
		return nil, err
	}
	return &GitRepository{
		r:   r,
		dir: dir,
	}, nil
}

// Head returns the checked out revision.
func (gr *GitRepository) Head() (Revision, error) {
	ref, err := gr.r.Head()
	if err != nil {
		return Revision{}, errors.Wrap(err, "could not read HEAD")
	}
	rev := Revision{RevisionID: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}
	return rev, nil
}

// Project returns the URL of the origin remote, if any.
func (gr *GitRepository) Project() string {
	origin, err := gr.r.Remote(remoteName)
	if err == nil && origin != nil && len(origin.Config().URLs) > 0 {
		return origin.Config().URLs[0]
	}
	return ""
}
