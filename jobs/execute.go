package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/remeh/sizedwaitgroup"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

// ProgressFunc is called after each job finishes. Calls are serialised.
type ProgressFunc func(completed, total int, r Result)

// Execute runs jobs with at most opts.Workers running at once and returns one
// result per job, in the order of jobs. A job starts only after all of its
// dependencies finished; if any of them failed, the job fails without
// running. Failing jobs are retried up to opts.Retry times unless the error is
// a user or format error, which a retry cannot fix.
func Execute(ctx context.Context, jobs []*Job, opts Options, progress ProgressFunc) []Result {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	slots := sizedwaitgroup.New(workers)

	index := make(map[*Job]int, len(jobs))
	done := make([]chan struct{}, len(jobs))
	for i, job := range jobs {
		index[job] = i
		done[i] = make(chan struct{})
	}

	results := make([]Result, len(jobs))
	var mu sync.Mutex
	completed := 0
	finish := func(i int, r Result) {
		results[i] = r
		close(done[i])

		mu.Lock()
		defer mu.Unlock()
		completed++
		if progress != nil {
			progress(completed, len(jobs), r)
		}
	}
	wait := func(dep *Job) (Result, bool) {
		k, ok := index[dep]
		if !ok {
			return Result{}, false
		}
		<-done[k]
		return results[k], true
	}

	// Jobs take a slot before they start waiting on their dependencies. Since
	// dependencies are launched first, a waiting job never holds the slot a
	// dependency needs.
	for _, i := range launchOrder(jobs, index) {
		job := jobs[i]
		if err := ctx.Err(); err != nil {
			finish(i, failure(job, errors.Wrap(err, "not started"), 0, ""))
			continue
		}
		if err := slots.AddWithContext(ctx); err != nil {
			finish(i, failure(job, errors.Wrap(err, "not started"), 0, ""))
			continue
		}
		go func(i int, job *Job) {
			defer slots.Done()
			finish(i, execute(ctx, job, opts, wait))
		}(i, job)
	}
	slots.Wait()
	return results
}

// launchOrder returns the indexes of jobs with every job after the
// dependencies it has in the list.
func launchOrder(jobs []*Job, index map[*Job]int) []int {
	order := make([]int, 0, len(jobs))
	visited := make([]bool, len(jobs))
	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, dep := range jobs[i].DependsOn {
			if k, ok := index[dep]; ok {
				visit(k)
			}
		}
		order = append(order, i)
	}
	for i := range jobs {
		visit(i)
	}
	return order
}

func execute(ctx context.Context, job *Job, opts Options, wait func(*Job) (Result, bool)) Result {
	for _, dep := range job.DependsOn {
		if r, ok := wait(dep); ok && r.Failed() {
			return failure(job, dependencyError(dep), 0, "")
		}
	}
	if err := ctx.Err(); err != nil {
		return failure(job, errors.Wrap(err, "not started"), 0, "")
	}

	entry := log.WithField("repository", job.String())
	var output string
	var err error
	attempts := 0
	for attempt := 0; attempt <= opts.Retry; attempt++ {
		if attempt > 0 {
			entry.WithError(err).WithField("attempt", attempt+1).Debug("retrying job")
			select {
			case <-ctx.Done():
				return failure(job, errors.Wrap(ctx.Err(), "retry cancelled"), attempts, output)
			case <-time.After(opts.RetryDelay):
			}
		}
		attempts++
		output, err = job.Run()
		if err == nil {
			entry.WithField("attempts", attempts).Debug("job succeeded")
			return Result{Job: job, Output: output, Attempts: attempts}
		}
		if !retryable(err) {
			break
		}
	}
	entry.WithError(err).WithField("attempts", attempts).Debug("job failed")
	return failure(job, err, attempts, output)
}

func retryable(err error) bool {
	return !errors.IsType(err, errors.User) && !errors.IsType(err, errors.Format)
}
