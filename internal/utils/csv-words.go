package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadWordsFile picks a parser by extension: .json is an array of strings,
// .csv is "word,count" rows, anything else is one word per line.
func LoadWordsFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read word file %s: %w", filePath, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return ReadJSONWords(f)
	case ".csv":
		return ReadCsvWords(f)
	default:
		return ReadLineWords(f)
	}
}

func ReadJSONWords(r io.Reader) ([]string, error) {
	var words []string
	if err := json.NewDecoder(r).Decode(&words); err != nil {
		return nil, fmt.Errorf("unable to parse word list as JSON: %w", err)
	}
	return words, nil
}

// ReadCsvWords keeps the first column of rows shaped like "word,count".
// Rows whose count is not a number (a header, usually) are skipped.
func ReadCsvWords(r io.Reader) ([]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse word list as CSV: %w", err)
	}

	words := make([]string, 0, len(records))
	for _, record := range records {
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			log.Debug().Strs("record", record).Msg("skipping empty csv record")
			continue
		}
		if len(record) > 1 {
			if _, err := strconv.Atoi(strings.TrimSpace(record[1])); err != nil {
				log.Debug().Strs("record", record).Msg("skipping csv record with invalid count")
				continue
			}
		}
		words = append(words, strings.TrimSpace(record[0]))
	}
	return words, nil
}

func ReadLineWords(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	words := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			words = append(words, l)
		}
	}
	return words, nil
}
