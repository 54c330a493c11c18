package genome

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// transcriptRecord is the on-disk JSON form of a transcript with its
// reference sequences attached.
type transcriptRecord struct {
	Transcript
	CodingSequence  string `json:"coding_sequence,omitempty"`
	ProteinSequence string `json:"protein_sequence,omitempty"`
}

// LoadJSONFile loads transcripts (with sequences) from a JSON file into
// the provider.
func LoadJSONFile(p *MemoryProvider, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()

	var records []transcriptRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return fmt.Errorf("decode annotation file %s: %w", path, err)
	}

	for i := range records {
		r := &records[i]
		t := r.Transcript
		p.AddTranscript(&t, r.CodingSequence, r.ProteinSequence)
	}

	return nil
}

// LoadJSONDir loads every *.json file under dir into the provider.
func LoadJSONDir(p *MemoryProvider, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("glob annotation files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no annotation files found in %s", dir)
	}

	for _, f := range files {
		if err := LoadJSONFile(p, f); err != nil {
			return err
		}
	}

	return nil
}
