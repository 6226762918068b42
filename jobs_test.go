package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStore(t *testing.T) {
	store := newJobStore()

	first := &Job{ID: generateJobID(), Path: "papers"}
	store.addJob(first)
	time.Sleep(time.Millisecond)
	second := &Job{ID: generateJobID(), Path: "papers/0620"}
	store.addJob(second)

	job, ok := store.getJob(first.ID)
	require.True(t, ok)
	assert.Equal(t, "pending", job.Status)
	assert.False(t, job.CreatedAt.IsZero())

	store.updateJob(first.ID, "in_progress", nil, nil)
	store.updateJob(first.ID, "failed", &SplitSummary{Papers: 2}, errors.New("boom"))
	job, _ = store.getJob(first.ID)
	assert.Equal(t, "failed", job.Status)
	assert.Equal(t, "boom", job.Error)
	require.NotNil(t, job.Summary)
	assert.Equal(t, 2, job.Summary.Papers)

	job.Status = "tampered"
	again, _ := store.getJob(first.ID)
	assert.Equal(t, "failed", again.Status, "getJob returns a copy")

	all := store.GetAllJobs()
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	_, ok = store.getJob("missing")
	assert.False(t, ok)
	store.updateJob("missing", "completed", nil, nil)
}

func TestRunWorkerProcessesQueuedJobs(t *testing.T) {
	app := newTestApp(t)
	empty := filepath.Join(t.TempDir(), "none")
	writeFile(t, filepath.Join(empty, "readme.txt"), "no papers here")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.runWorker(ctx) }()

	job := &Job{ID: generateJobID(), Path: empty, Marker: "qp"}
	app.jobs.addJob(job)
	app.jobQueue <- job

	assert.Eventually(t, func() bool {
		j, _ := app.jobs.getJob(job.ID)
		return j.Status == "completed"
	}, 2*time.Second, 10*time.Millisecond)

	missing := &Job{ID: generateJobID(), Path: filepath.Join(empty, "does-not-exist")}
	app.jobs.addJob(missing)
	app.jobQueue <- missing

	assert.Eventually(t, func() bool {
		j, _ := app.jobs.getJob(missing.ID)
		return j.Status == "failed" && j.Error != ""
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
