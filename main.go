package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"question-bank/internal/constants"
	"question-bank/pdfio"
	"question-bank/render"
	"question-bank/segment"
)

// Global Variables and Constants
var (

	// Logger
	log = logrus.New()

	// Environment Variables
	papersDir         = envOrDefault("PAPERS_DIR", constants.DefaultPapersDir)
	outputDir         = envOrDefault("OUTPUT_DIR", constants.DefaultOutputDir)
	dbPath            = envOrDefault("DB_PATH", constants.DefaultDBPath)
	csvPath           = os.Getenv("CSV_PATH")
	debugDir          = os.Getenv("DEBUG_DIR")
	profileConfig     = envOrDefault("PROFILE_CONFIG", constants.DefaultConfigPath)
	filenameTemplate  = os.Getenv("FILENAME_TEMPLATE")
	listenAddr        = envOrDefault("LISTEN_ADDR", ":8080")
	syllabusDir       = envOrDefault("SYLLABUS_DIR", constants.DefaultSyllabusDir)
	sortedDir         = envOrDefault("SORTED_DIR", constants.DefaultSortedDir)
	pageSource        = os.Getenv("PAGE_SOURCE")
	hocrSuffix        = os.Getenv("HOCR_SUFFIX")
	llmProvider       = os.Getenv("LLM_PROVIDER")
	llmModel          = os.Getenv("LLM_MODEL")
	openaiAPIKey      = os.Getenv("OPENAI_API_KEY")
	openaiBaseURL     = os.Getenv("OPENAI_BASE_URL")
	ollamaHost        = envOrDefault("OLLAMA_HOST", "http://127.0.0.1:11434")
	googleAIAPIKey    = os.Getenv("GOOGLEAI_API_KEY")
	requestsPerMinute = envFloat("LLM_REQUESTS_PER_MINUTE", 0)
	tokenLimit        = envInt("TOKEN_LIMIT", 0)
	logLevel          = strings.ToLower(os.Getenv("LOG_LEVEL"))

	// Templates
	topicTemplate *template.Template
	templateMutex sync.RWMutex

	// Default templates
	defaultTopicTemplate = `You are an expert examiner for Subject Code {{.SubjectCode}}. Your task is to analyze an exam question and classify it against the provided official syllabus.

--- CONTEXT & TASK ---
1. You must only identify **MAJOR TOPICS** (Level 1 headings) from the syllabus. Ignore all sub-topics, details, and bullet points.
2. For each relevant Major Topic, you must include its primary number.
3. Questions may cover multiple Major Topics; identify all that apply.
--- SYLLABUS CONTEXT ---
{{.Syllabus}}
--- END SYLLABUS ---

--- EXAM QUESTION TO ANALYZE ---
{{.Content}}
--- END EXAM QUESTION ---

Output the topics as a comma-separated list. Each topic MUST be formatted as: 'Topic_<Number>_<Major Topic Name>' (e.g., 'Topic_1_The Particulate Nature of Matter'). Remove all special characters (e.g., dashes, slashes, parentheses, commas) from the topic name itself, using only spaces or underscores. If multiple topics apply, separate them with a comma and a single space (, ). If no Major Topics apply, respond with ONLY the word 'None'.
`
)

// App struct to hold dependencies
type App struct {
	Database *gorm.DB
	Profiles segment.ProfileSet
	Source   pdfio.Source
	LLM      llms.Model

	PapersDir string
	OutputDir string
	SortedDir string
	DebugDir  string

	namesMu sync.Mutex
	names   map[string]*template.Template

	jobs     *JobStore
	jobQueue chan *Job
}

const usage = `Usage: question-bank <command> [flags] [args]

Commands:
  split   [-marker qp|ms] [path]      split papers into question snippets
  query   <query>                     list stored questions matching a query
  merge   [-o file] <query>           pack matching questions onto A4 sheets
  mock    [-o file] <snippet>...      concatenate snippets into a mock paper
  sort    [query]                     sort questions into syllabus topics
  export  [-o file]                   write the flat CSV export
  serve                               run the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Initialize logrus logger
	initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, command string, args []string) error {
	switch command {
	case "split":
		fs := flag.NewFlagSet("split", flag.ContinueOnError)
		marker := fs.String("marker", "qp", "variant marker a paper path must contain")
		if err := fs.Parse(args); err != nil {
			return err
		}
		root := papersDir
		if fs.NArg() > 0 {
			root = fs.Arg(0)
		}
		app, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		summary, err := app.splitAll(ctx, root, *marker)
		printSplitSummary(os.Stdout, summary)
		return err

	case "query":
		if len(args) == 0 {
			return fmt.Errorf("query needs a query string")
		}
		app, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		records, err := app.query(strings.Join(args, " "))
		if err != nil {
			return err
		}
		printQuestions(os.Stdout, records)
		return nil

	case "merge":
		fs := flag.NewFlagSet("merge", flag.ContinueOnError)
		out := fs.String("o", filepath.Join(outputDir, "merged.pdf"), "output PDF")
		border := fs.Float64("border", render.DefaultMergeBorder, "sheet border in points")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			return fmt.Errorf("merge needs a query string")
		}
		app, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		records, err := app.query(strings.Join(fs.Args(), " "))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no questions match the query")
		}
		if err := render.Merge(snippetPaths(records), *out, *border); err != nil {
			return err
		}
		okColor.Printf("%d questions merged into %s\n", len(records), *out)
		return nil

	case "mock":
		fs := flag.NewFlagSet("mock", flag.ContinueOnError)
		out := fs.String("o", filepath.Join(outputDir, "mock_paper.pdf"), "output PDF")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := render.Mock(fs.Args(), *out); err != nil {
			return err
		}
		okColor.Printf("Mock paper with %d questions written to %s\n", fs.NArg(), *out)
		return nil

	case "sort":
		app, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		var records []QuestionRecord
		if len(args) > 0 {
			records, err = app.query(strings.Join(args, " "))
		} else {
			records, err = GetAllQuestions(app.Database)
		}
		if err != nil {
			return err
		}
		summary, err := app.sortQuestions(ctx, records, syllabusDir, app.SortedDir)
		printSortSummary(os.Stdout, summary)
		return err

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		defaultOut := csvPath
		if defaultOut == "" {
			defaultOut = filepath.Join(outputDir, constants.CSVFileName)
		}
		out := fs.String("o", defaultOut, "output CSV")
		if err := fs.Parse(args); err != nil {
			return err
		}
		app, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		n, err := ExportCSV(app.Database, *out)
		if err != nil {
			return err
		}
		okColor.Printf("%d rows written to %s\n", n, *out)
		return nil

	case "serve":
		app, err := newApp(ctx, llmProvider != "")
		if err != nil {
			return err
		}
		return app.serve(ctx, listenAddr)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// newApp wires the database, profiles, page source and, when withLLM is
// set, the topic classifier.
func newApp(ctx context.Context, withLLM bool) (*App, error) {
	database, err := InitializeDB(dbPath)
	if err != nil {
		return nil, err
	}

	profiles, err := loadProfiles(profileConfig)
	if err != nil {
		return nil, err
	}

	source, err := pdfio.NewSource(pdfio.Config{Provider: pageSource, HOCRSuffix: hocrSuffix})
	if err != nil {
		return nil, err
	}

	app := &App{
		Database:  database,
		Profiles:  profiles,
		Source:    source,
		PapersDir: papersDir,
		OutputDir: outputDir,
		SortedDir: sortedDir,
		DebugDir:  debugDir,
		names:     map[string]*template.Template{},
		jobs:      newJobStore(),
		jobQueue:  make(chan *Job, 100),
	}

	if withLLM {
		if err := loadTemplates(); err != nil {
			return nil, err
		}
		llm, err := createLLM(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		app.LLM = llm
	}
	return app, nil
}

func (app *App) query(input string) ([]QuestionRecord, error) {
	conds, err := ParseQuery(input)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return QueryQuestions(app.Database, conds)
}

// serve runs the HTTP API and the split worker until ctx is cancelled.
func (app *App) serve(ctx context.Context, addr string) error {
	if logLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.registerRoutes(router)

	srv := &http.Server{Addr: addr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.runWorker(gctx)
	})
	g.Go(func() error {
		log.Infof("Server started on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func initLogger() {
	switch logLevel {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
		if logLevel != "" {
			log.Fatalf("Invalid log level: '%s'.", logLevel)
		}
	}

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	segment.SetLogLevel(log.GetLevel())
	pdfio.SetLogLevel(log.GetLevel())
	render.SetLogLevel(log.GetLevel())
}

// loadTemplates loads the topic prompt from prompts/ or writes the default
// one there.
func loadTemplates() error {
	templateMutex.Lock()
	defer templateMutex.Unlock()

	promptsDir := "prompts"
	if err := os.MkdirAll(promptsDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create prompts directory: %w", err)
	}

	topicTemplatePath := filepath.Join(promptsDir, "topic_prompt.tmpl")
	topicTemplateContent, err := os.ReadFile(topicTemplatePath)
	if err != nil {
		log.Infof("Could not read %s, using default template: %v", topicTemplatePath, err)
		topicTemplateContent = []byte(defaultTopicTemplate)
		if err := os.WriteFile(topicTemplatePath, topicTemplateContent, 0644); err != nil {
			log.Warnf("Failed to write default topic template to disk: %v", err)
		}
	}
	topicTemplate, err = template.New("topic").Funcs(sprig.FuncMap()).Parse(string(topicTemplateContent))
	if err != nil {
		return fmt.Errorf("failed to parse topic template: %w", err)
	}
	return nil
}

// createLLM creates the topic classifier for LLM_PROVIDER, wrapped in the
// rate limiter.
func createLLM(ctx context.Context) (llms.Model, error) {
	if llmModel == "" {
		return nil, fmt.Errorf("LLM_MODEL is not set")
	}

	var (
		model llms.Model
		err   error
	)
	switch strings.ToLower(llmProvider) {
	case "openai":
		token := openaiAPIKey
		if token == "" {
			if openaiBaseURL == "" {
				return nil, fmt.Errorf("OpenAI API key is not set")
			}
			token = constants.DummyAPIKey
		}
		opts := []openai.Option{
			openai.WithModel(llmModel),
			openai.WithToken(token),
			openai.WithHTTPClient(newRetryableHTTPClient()),
		}
		if openaiBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(openaiBaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		model, err = ollama.New(
			ollama.WithModel(llmModel),
			ollama.WithServerURL(ollamaHost),
			ollama.WithHTTPClient(newRetryableHTTPClient()),
		)
	case "googleai":
		if googleAIAPIKey == "" {
			return nil, fmt.Errorf("Google AI API key is not set")
		}
		model, err = NewGoogleAIProvider(ctx, llmModel, googleAIAPIKey, thinkingBudget())
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmProvider)
	}
	if err != nil {
		return nil, err
	}

	return NewRateLimitedLLM(model, RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
	}), nil
}

// thinkingBudget reads GOOGLEAI_THINKING_BUDGET. Unset leaves the model's
// default.
func thinkingBudget() *int32 {
	v := os.Getenv("GOOGLEAI_THINKING_BUDGET")
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		log.Warnf("Invalid GOOGLEAI_THINKING_BUDGET value %q, ignoring", v)
		return nil
	}
	budget := int32(n)
	return &budget
}

func newRetryableHTTPClient() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 10 * time.Second
	client.Logger = log.WithField("prefix", "LLM_HTTP")
	return client.StandardClient()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("Invalid %s value %q, using %d", key, v, def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warnf("Invalid %s value %q, using %v", key, v, def)
		return def
	}
	return f
}
