// Package jobs turns repository lists into import jobs and executes them on a
// bounded pool of workers.
package jobs

import (
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/files"
	"github.com/gazebo-tooling/gz-dashboard/repos"
	"github.com/gazebo-tooling/gz-dashboard/vcs"
)

// Default execution settings.
const (
	DefaultWorkers    = 4
	DefaultRetry      = 2
	DefaultRetryDelay = time.Second
)

// ClientFactory returns the client that imports repositories of a VCS type.
type ClientFactory func(vcs.Type) (vcs.Client, error)

// Options configure job generation and execution for one distribution. They
// are passed by value so that each distribution works on its own copy.
type Options struct {
	Path string // Directory the repository paths are relative to.

	Clean        bool // Remove checkouts before importing them.
	Force        bool // Replace mismatching checkouts.
	SkipExisting bool // Leave existing checkouts untouched.
	Shallow      bool // Clone with minimal history.
	Recursive    bool // Check out submodules.

	Workers    int           // Maximum number of jobs running at once.
	Retry      int           // Extra attempts for a failing job.
	RetryDelay time.Duration // Pause between attempts.

	// NewClient defaults to vcs.ClientFor.
	NewClient ClientFactory
}

// DefaultOptions returns the options used by `sync`.
func DefaultOptions() Options {
	return Options{
		Path:       ".",
		Workers:    DefaultWorkers,
		Retry:      DefaultRetry,
		RetryDelay: DefaultRetryDelay,
	}
}

// Job brings one repository to its target state.
type Job struct {
	Repository repos.Repository
	Dir        string
	DependsOn  []*Job

	client vcs.Client
	opts   Options
	err    error
}

func (j *Job) String() string {
	return j.Repository.Path
}

// Type is the repository's VCS type as shown to users.
func (j *Job) Type() string {
	if j.client == nil {
		return "invalid"
	}
	return j.client.Type().String()
}

// Run performs a single attempt of the job.
func (j *Job) Run() (string, error) {
	if j.err != nil {
		return "", j.err
	}

	exists := files.ExistsAny(j.Dir)
	if exists && j.opts.SkipExisting {
		return "Skipped existing directory\n", nil
	}
	if exists && j.opts.Clean {
		log.WithField("dir", j.Dir).Debug("cleaning checkout")
		if err := files.Rm(j.Dir); err != nil {
			return "", errors.Wrapf(err, "could not clean %s", j.Dir)
		}
	}

	return j.client.Import(j.Dir, vcs.ImportOptions{
		URL:       j.Repository.URL,
		Version:   j.Repository.Version,
		Shallow:   j.opts.Shallow,
		Recursive: j.opts.Recursive,
		Force:     j.opts.Force,
	})
}

// Generate creates one job per repository. Invalid repositories still get a
// job, which fails when run.
func Generate(list []repos.Repository, opts Options) []*Job {
	newClient := opts.NewClient
	if newClient == nil {
		newClient = vcs.ClientFor
	}

	var jobs []*Job
	for _, repo := range list {
		job := &Job{
			Repository: repo,
			Dir:        filepath.Join(opts.Path, filepath.FromSlash(repo.Path)),
			opts:       opts,
			err:        repo.Err,
		}
		if job.err == nil {
			job.client, job.err = newClient(repo.Type)
		}
		if job.err != nil {
			log.WithError(job.err).WithField("repository", repo.Path).Debug("generated failing job")
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// AddDependencies makes every job wait for the jobs whose directories contain
// its own, so that parent checkouts are imported before nested ones. Jobs for
// the same directory run in list order.
func AddDependencies(jobs []*Job) {
	for i, job := range jobs {
		for k, other := range jobs {
			if i == k || !files.IsWithin(other.Dir, job.Dir) {
				continue
			}
			if filepath.Clean(other.Dir) == filepath.Clean(job.Dir) && k > i {
				continue
			}
			job.DependsOn = append(job.DependsOn, other)
		}
	}
}

// Result is the outcome of a job.
type Result struct {
	Job        *Job
	Output     string
	Err        error
	ReturnCode int
	Attempts   int
}

func (r Result) Failed() bool {
	return r.ReturnCode != 0
}

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

func failure(job *Job, err error, attempts int, output string) Result {
	return Result{
		Job:        job,
		Output:     output,
		Err:        err,
		ReturnCode: 1,
		Attempts:   attempts,
	}
}

func dependencyError(dep *Job) error {
	return errors.Errorf("skipped because %s failed", dep)
}
