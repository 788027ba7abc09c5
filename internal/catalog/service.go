package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"karaoke/internal/logging"
	"karaoke/internal/queue"
)

// Service wraps a Repository with validation and logging.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a catalog service.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("catalog: repository is nil")
	}
	return &Service{
		repo:   repo,
		logger: logging.NewComponentLogger(logger, "catalog"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func normalize(song Song) (Song, error) {
	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)
	song.Source = strings.TrimSpace(song.Source)
	song.Filename = strings.TrimSpace(song.Filename)
	switch {
	case song.Title == "":
		return Song{}, fmt.Errorf("%w: title is required", ErrInvalid)
	case song.Artist == "":
		return Song{}, fmt.Errorf("%w: artist is required", ErrInvalid)
	case song.Duration < 0:
		return Song{}, fmt.Errorf("%w: duration must not be negative", ErrInvalid)
	}
	return song, nil
}

// Create validates and stores a new song.
func (s *Service) Create(ctx context.Context, song Song) (Song, error) {
	song, err := normalize(song)
	if err != nil {
		return Song{}, err
	}
	created, err := s.repo.Create(ctx, song)
	if err != nil {
		return Song{}, err
	}
	logging.WithContext(ctx, s.logger).Info("song added",
		logging.SongID(created.ID),
		logging.String("song", created.Ref().Label()),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Song, error) {
	if id <= 0 {
		return Song{}, fmt.Errorf("%w: song id must be positive", ErrInvalid)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Song, error) {
	return s.repo.List(ctx, limit, max(offset, 0))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Info("song removed", logging.SongID(id))
	return nil
}

// RecordPlay bumps the play counter. It also satisfies queue.PlayRecorder.
func (s *Service) RecordPlay(ctx context.Context, id int64) error {
	return s.repo.RecordPlay(ctx, id, s.now())
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// LookupSong implements queue.SongLookup.
func (s *Service) LookupSong(ctx context.Context, songID int64) (queue.ItemRef, error) {
	song, err := s.repo.Get(ctx, songID)
	if errors.Is(err, ErrNotFound) {
		return queue.ItemRef{}, queue.SongNotFound(songID, err)
	}
	if err != nil {
		return queue.ItemRef{}, err
	}
	return song.Ref(), nil
}
