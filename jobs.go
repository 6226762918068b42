package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is a split request queued by the HTTP API
type Job struct {
	ID        string        `json:"id"`
	Path      string        `json:"path"`
	Marker    string        `json:"marker"`
	Status    string        `json:"status"` // "pending", "in_progress", "completed", "failed"
	Error     string        `json:"error,omitempty"`
	Summary   *SplitSummary `json:"summary,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// JobStore manages jobs and their statuses
type JobStore struct {
	sync.RWMutex
	jobs map[string]*Job
}

func newJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

var jobLogger = log.WithField("prefix", "SPLIT_JOB")

func generateJobID() string {
	return uuid.New().String()
}

func (store *JobStore) addJob(job *Job) {
	store.Lock()
	defer store.Unlock()
	job.Status = "pending"
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	store.jobs[job.ID] = job
	jobLogger.Infof("Job added: %s (%s)", job.ID, job.Path)
}

// getJob returns a copy of the job so callers can read it without the lock.
func (store *JobStore) getJob(jobID string) (Job, bool) {
	store.RLock()
	defer store.RUnlock()
	job, exists := store.jobs[jobID]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// GetAllJobs returns copies of every job, newest first.
func (store *JobStore) GetAllJobs() []Job {
	store.RLock()
	defer store.RUnlock()

	jobs := make([]Job, 0, len(store.jobs))
	for _, job := range store.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

func (store *JobStore) updateJob(jobID, status string, summary *SplitSummary, err error) {
	store.Lock()
	defer store.Unlock()
	job, exists := store.jobs[jobID]
	if !exists {
		return
	}
	job.Status = status
	if summary != nil {
		job.Summary = summary
	}
	if err != nil {
		job.Error = err.Error()
	}
	job.UpdatedAt = time.Now()
	jobLogger.Infof("Job %s is %s", jobID, status)
}

// runWorker drains the queue one job at a time until ctx is done, so papers
// are never split concurrently.
func (app *App) runWorker(ctx context.Context) error {
	jobLogger.Info("Worker started")
	for {
		select {
		case <-ctx.Done():
			jobLogger.Info("Worker shutting down")
			return nil
		case job := <-app.jobQueue:
			app.processJob(ctx, job)
		}
	}
}

func (app *App) processJob(ctx context.Context, job *Job) {
	app.jobs.updateJob(job.ID, "in_progress", nil, nil)

	summary, err := app.splitAll(ctx, job.Path, job.Marker)
	if err != nil {
		jobLogger.Errorf("Error processing job %s: %v", job.ID, err)
		app.jobs.updateJob(job.ID, "failed", &summary, err)
		return
	}
	app.jobs.updateJob(job.ID, "completed", &summary, nil)
}
