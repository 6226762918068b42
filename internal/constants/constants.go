package constants

// DummyAPIKey is used as a placeholder when connecting to OpenAI-compatible services
// that don't require authentication. Many services expect a token in the request
// header but don't validate it.
const DummyAPIKey = "not-needed"

// Default directories, relative to the working directory.
const (
	DefaultPapersDir   = "papers"
	DefaultOutputDir   = "questions"
	DefaultSortedDir   = "sorted_questions_by_topic"
	DefaultSyllabusDir = "syllabi"
	DefaultDBPath      = "db/questions.db"
	DefaultConfigPath  = "config/profiles.yaml"
)

// CSVFileName is the flat export written next to the snippets.
const CSVFileName = "database.csv"

// CSVHeaders is the column order of the flat export.
var CSVHeaders = []string{"subject_code", "year", "season", "paper", "variant", "question", "filename", "text"}
