package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"question-bank/internal/constants"
)

// QuestionRecord is one extracted snippet in the question_records table
type QuestionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SubjectCode string    `gorm:"size:16;index" json:"subject_code"`
	Year        string    `gorm:"size:8" json:"year"`
	Season      string    `gorm:"size:4" json:"season"`
	Paper       string    `gorm:"size:4" json:"paper"`
	Variant     string    `gorm:"size:4" json:"variant"`
	Kind        string    `gorm:"size:4" json:"kind"`
	Question    string    `gorm:"size:32" json:"question"`
	OutputPath  string    `gorm:"size:1024;not null;index" json:"filename"`
	Text        string    `gorm:"size:1048576" json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Column returns the value of a flat export column by name.
func (r QuestionRecord) Column(name string) (string, bool) {
	switch name {
	case "subject_code":
		return r.SubjectCode, true
	case "year":
		return r.Year, true
	case "season":
		return r.Season, true
	case "paper":
		return r.Paper, true
	case "variant":
		return r.Variant, true
	case "question":
		return r.Question, true
	case "filename":
		return r.OutputPath, true
	case "text":
		return r.Text, true
	default:
		return "", false
	}
}

// InitializeDB opens the SQLite database at dbPath and migrates the schema
func InitializeDB(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&QuestionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return db, nil
}

// InsertQuestions appends records to the side-table
func InsertQuestions(db *gorm.DB, records []QuestionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.Create(&records).Error
}

// ClearDuplicates keeps only the first row per output path and reports how
// many rows were removed.
func ClearDuplicates(db *gorm.DB) (int64, error) {
	keep := db.Model(&QuestionRecord{}).Select("MIN(id)").Group("output_path")
	result := db.Where("id NOT IN (?)", keep).Delete(&QuestionRecord{})
	return result.RowsAffected, result.Error
}

// GetAllQuestions retrieves every record in insertion order
func GetAllQuestions(db *gorm.DB) ([]QuestionRecord, error) {
	var records []QuestionRecord
	result := db.Order("id").Find(&records)
	return records, result.Error
}

// ExportCSV writes every record to path using the flat column layout.
func ExportCSV(db *gorm.DB, path string) (int, error) {
	records, err := GetAllQuestions(db)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(constants.CSVHeaders); err != nil {
		return 0, err
	}
	for _, r := range records {
		row := make([]string, len(constants.CSVHeaders))
		for i, col := range constants.CSVHeaders {
			row[i], _ = r.Column(col)
		}
		if err := w.Write(row); err != nil {
			return 0, err
		}
	}
	w.Flush()
	return len(records), w.Error()
}
