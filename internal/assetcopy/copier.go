package assetcopy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// Job is one source-to-destination copy. Source is relative to the project tree and
// Destination to the output tree.
type Job struct {
	Source      string
	Destination string
	Kind        config.EntryKind
}

// Summary counts job outcomes. Files is the number of files written across all jobs.
type Summary struct {
	Copied  int
	Skipped int
	Failed  int
	Files   int
}

// Failure describes a job that could not be completed.
type Failure struct {
	Job Job
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("copy %s -> %s: %v", f.Job.Source, f.Job.Destination, f.Err)
}

// Jobs expands the configured copy manifest, legacy page list and legacy script directories
// into copy jobs. Pages and script dirs keep their relative path below the page source dir.
func Jobs(a config.AssetsConfig) []Job {
	jobs := make([]Job, 0, len(a.Copy)+len(a.LegacyPages)+len(a.LegacyScriptDirs))
	for _, e := range a.Copy {
		jobs = append(jobs, Job{Source: e.Source, Destination: e.Destination, Kind: e.Kind})
	}
	for _, page := range a.LegacyPages {
		jobs = append(jobs, Job{Source: filepath.Join(a.PageSourceDir, page), Destination: page, Kind: config.KindFile})
	}
	for _, dir := range a.LegacyScriptDirs {
		jobs = append(jobs, Job{Source: filepath.Join(a.PageSourceDir, dir), Destination: dir, Kind: config.KindDirectory})
	}
	return jobs
}

// Copier runs copy jobs from a source filesystem into the output filesystem.
type Copier struct {
	src         billy.Filesystem
	out         billy.Filesystem
	concurrency int
}

// NewCopier creates a copier running at most concurrency jobs at once. Jobs only run in
// parallel when both filesystems are safe for concurrent use, which holds for osfs; any other
// filesystem (memfs in particular) is copied one job at a time.
func NewCopier(src, out billy.Filesystem, concurrency int) *Copier {
	if concurrency < 1 || !osBacked(src) || !osBacked(out) {
		concurrency = 1
	}
	return &Copier{src: src, out: out, concurrency: concurrency}
}

// Concurrency returns the effective job limit.
func (c *Copier) Concurrency() int { return c.concurrency }

// osBacked reports whether fs is an osfs filesystem, looking through chroot wrappers.
func osBacked(fs billy.Basic) bool {
	for fs != nil {
		switch v := fs.(type) {
		case *osfs.ChrootOS, *osfs.BoundOS:
			return true
		case interface{ Underlying() billy.Basic }:
			fs = v.Underlying()
		default:
			return false
		}
	}
	return false
}

// Copy runs all jobs. A missing source is skipped without creating its destination; any other
// per-job problem is logged as a warning and reported in the returned failures. Only context
// cancellation produces an error.
func (c *Copier) Copy(ctx context.Context, jobs []Job) (Summary, []Failure, error) {
	var (
		mu       sync.Mutex
		summary  Summary
		failures []Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, skipped, err := c.copyOne(job)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				failures = append(failures, Failure{Job: job, Err: err})
				slog.Warn("Asset copy failed",
					logfields.Source(job.Source),
					logfields.Destination(job.Destination),
					logfields.Error(err))
			case skipped:
				summary.Skipped++
				slog.Debug("Asset source missing, skipped", logfields.Source(job.Source))
			default:
				summary.Copied++
				summary.Files += files
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, failures, err
	}
	if err := ctx.Err(); err != nil {
		return summary, failures, err
	}
	return summary, failures, nil
}

func (c *Copier) copyOne(job Job) (files int, skipped bool, err error) {
	info, err := c.src.Stat(job.Source)
	if err != nil {
		if !Exists(c.src, job.Source) {
			return 0, true, nil
		}
		return 0, false, err
	}

	switch job.Kind {
	case config.KindDirectory:
		if !info.IsDir() {
			return 0, false, fmt.Errorf("%s is not a directory", job.Source)
		}
		n, err := CopyDir(c.src, job.Source, c.out, job.Destination)
		return n, false, err
	default:
		if info.IsDir() {
			return 0, false, fmt.Errorf("%s is a directory", job.Source)
		}
		if err := CopyFile(c.src, job.Source, c.out, job.Destination); err != nil {
			return 0, false, err
		}
		return 1, false, nil
	}
}
