package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"karaoke/internal/logging"
)

type seedFile struct {
	Songs []seedSong `yaml:"songs"`
}

type seedSong struct {
	Title    string `yaml:"title"`
	Artist   string `yaml:"artist"`
	Source   string `yaml:"source"`
	Filename string `yaml:"filename"`
	Duration int    `yaml:"duration"`
}

// ImportYAML adds every song listed in a seed document:
//
//	songs:
//	  - title: Africa
//	    artist: Toto
//	    duration: 295
//
// Entries are validated up front; nothing is written when one is invalid.
func (s *Service) ImportYAML(ctx context.Context, r io.Reader) ([]Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse seed file: %v", ErrInvalid, err)
	}

	pending := make([]Song, 0, len(doc.Songs))
	for i, entry := range doc.Songs {
		song, err := normalize(Song{
			Title:    entry.Title,
			Artist:   entry.Artist,
			Source:   entry.Source,
			Filename: entry.Filename,
			Duration: entry.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("song %d: %w", i+1, err)
		}
		pending = append(pending, song)
	}

	created := make([]Song, 0, len(pending))
	for _, song := range pending {
		stored, err := s.repo.Create(ctx, song)
		if err != nil {
			return created, fmt.Errorf("import %q: %w", song.Title, err)
		}
		created = append(created, stored)
	}
	logging.WithContext(ctx, s.logger).Info("imported songs", logging.Int("count", len(created)))
	return created, nil
}
