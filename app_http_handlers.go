package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"question-bank/render"
)

// registerRoutes wires the API onto router.
func (app *App) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/questions", app.queryQuestionsHandler)
		api.POST("/split", app.submitSplitJobHandler)
		api.GET("/jobs", app.getAllJobsHandler)
		api.GET("/jobs/:job_id", app.getJobStatusHandler)
		api.POST("/merge", app.mergeHandler)
		api.POST("/mock", app.mockHandler)
		api.GET("/profiles", app.getProfilesHandler)
	}
}

// queryQuestionsHandler handles the GET /api/questions?q= endpoint
func (app *App) queryQuestionsHandler(c *gin.Context) {
	conds, err := ParseQuery(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid query: %v", err)})
		return
	}
	records, err := QueryQuestions(app.Database, conds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query questions"})
		log.Errorf("Failed to query questions: %v", err)
		return
	}
	if records == nil {
		records = []QuestionRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// submitSplitJobHandler handles the POST /api/split endpoint
func (app *App) submitSplitJobHandler(c *gin.Context) {
	var req struct {
		Path   string `json:"path"`
		Marker string `json:"marker"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	path := app.PapersDir
	if req.Path != "" {
		resolved, ok := resolveWithin(app.PapersDir, req.Path)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Path must be inside the papers directory"})
			return
		}
		path = resolved
	}

	job := &Job{ID: generateJobID(), Path: path, Marker: req.Marker}
	app.jobs.addJob(job)
	select {
	case app.jobQueue <- job:
	default:
		app.jobs.updateJob(job.ID, "failed", nil, fmt.Errorf("job queue is full"))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Job queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

// getJobStatusHandler handles the GET /api/jobs/:job_id endpoint
func (app *App) getJobStatusHandler(c *gin.Context) {
	job, exists := app.jobs.getJob(c.Param("job_id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// getAllJobsHandler handles the GET /api/jobs endpoint
func (app *App) getAllJobsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.jobs.GetAllJobs())
}

// mergeHandler handles the POST /api/merge endpoint. It packs every
// question matching the query onto A4 sheets.
func (app *App) mergeHandler(c *gin.Context) {
	var req struct {
		Query  string `json:"query" binding:"required"`
		Output string `json:"output"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	out, ok := app.outputFile(req.Output, "merged.pdf")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Output must be inside the output directory"})
		return
	}

	conds, err := ParseQuery(req.Query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid query: %v", err)})
		return
	}
	records, err := QueryQuestions(app.Database, conds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query questions"})
		log.Errorf("Failed to query questions: %v", err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No questions match the query"})
		return
	}

	if err := render.Merge(snippetPaths(records), out, render.DefaultMergeBorder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to merge questions"})
		log.Errorf("Failed to merge questions: %v", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": out, "questions": len(records)})
}

// mockHandler handles the POST /api/mock endpoint. It concatenates the
// chosen snippets in the order given.
func (app *App) mockHandler(c *gin.Context) {
	var req struct {
		Files  []string `json:"files" binding:"required"`
		Output string   `json:"output"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	out, ok := app.outputFile(req.Output, "mock_paper.pdf")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Output must be inside the output directory"})
		return
	}

	files := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		resolved, ok := resolveWithin(app.OutputDir, f)
		if !ok {
			if resolved, ok = resolveWithin(app.SortedDir, f); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File %q is not a stored question", f)})
				return
			}
		}
		files = append(files, resolved)
	}

	if err := render.Mock(files, out); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble mock paper"})
		log.Errorf("Failed to assemble mock paper: %v", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": out, "questions": len(files)})
}

// getProfilesHandler handles the GET /api/profiles endpoint
func (app *App) getProfilesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.Profiles)
}

func (app *App) outputFile(name, fallback string) (string, bool) {
	if name == "" {
		name = fallback
	}
	return resolveWithin(app.OutputDir, name)
}

// resolveWithin resolves p against base and reports whether the result
// stays inside base. Absolute paths are accepted when they do.
func resolveWithin(base, p string) (string, bool) {
	if base == "" {
		return "", false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	target := p
	if !filepath.IsAbs(target) {
		// Paths may be given relative to the working directory or to base.
		if rel, err := filepath.Rel(base, target); err == nil && !strings.HasPrefix(rel, "..") {
			target = filepath.Join(base, rel)
		} else {
			target = filepath.Join(base, target)
		}
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

func snippetPaths(records []QuestionRecord) []string {
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.OutputPath)
	}
	return paths
}
