// ABOUTME: Handles reading analysis documents and audio tag metadata
// ABOUTME: Parses the upstream JSON analysis format into a validated Timeline

package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// analysisDoc mirrors the JSON document written by the upstream analysis
// service. Cell times are optional in the wire format, hence the pointer.
type analysisDoc struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Audio    string  `json:"audio"`
	Duration float64 `json:"duration"`
	BPM      float64 `json:"bpm"`

	ShiftCount   int `json:"shiftCount"`
	PaddingCount int `json:"paddingCount"`

	Cells []struct {
		Chord string   `json:"chord"`
		Time  *float64 `json:"time,omitempty"`
	} `json:"cells"`

	Mapping []struct {
		Time  float64 `json:"time"`
		Cell  int     `json:"cell"`
		Chord string  `json:"chord"`
	} `json:"mapping,omitempty"`

	Beats     []float64 `json:"beats"`
	Downbeats []float64 `json:"downbeats"`
}

// Load reads and validates an analysis document.
// When the document names an audio file that exists, missing title/artist
// fields are filled in from its tags.
func Load(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}

	var doc analysisDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse analysis file: %w", err)
	}

	tl := &Timeline{
		Title:        doc.Title,
		Artist:       doc.Artist,
		AudioPath:    doc.Audio,
		Duration:     doc.Duration,
		BPM:          doc.BPM,
		ShiftCount:   doc.ShiftCount,
		PaddingCount: doc.PaddingCount,
		Beats:        doc.Beats,
		Downbeats:    doc.Downbeats,
	}

	tl.Cells = make([]Cell, len(doc.Cells))
	for i, c := range doc.Cells {
		tl.Cells[i] = Cell{Label: c.Chord}
		if c.Time != nil {
			tl.Cells[i].Time = *c.Time
			tl.Cells[i].HasTime = true
		}
	}

	tl.Mapping = make([]MapEntry, len(doc.Mapping))
	for i, m := range doc.Mapping {
		tl.Mapping[i] = MapEntry{Time: m.Time, Cell: m.Cell, Label: m.Chord}
	}

	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis document %s: %w", path, err)
	}

	fillTagMetadata(tl, filepath.Dir(path))

	return tl, nil
}

// fillTagMetadata fills missing title/artist from the audio file's tags.
// Best effort: analysis documents often omit display metadata, and the audio
// file may not be present at all on this machine.
func fillTagMetadata(tl *Timeline, baseDir string) {
	if tl.AudioPath == "" || (tl.Title != "" && tl.Artist != "") {
		return
	}

	fullPath := tl.AudioPath
	if !filepath.IsAbs(fullPath) && baseDir != "" {
		fullPath = filepath.Join(baseDir, fullPath)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return
	}
	defer func() { _ = file.Close() }()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return
	}

	if tl.Title == "" {
		tl.Title = metadata.Title()
	}

	if tl.Artist == "" {
		tl.Artist = metadata.Artist()
	}

	if tl.Title == "" {
		tl.Title = filepath.Base(tl.AudioPath)
	}
}
