package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fyyur/internal/models"
)

// CreateSong stores a song. When AlbumID is set the album must belong to the
// same artist, otherwise ErrAlbumNotFound is returned.
func (s *Store) CreateSong(ctx context.Context, song models.Song) (models.Song, error) {
	err := s.withTx(ctx, "create song", func(tx *sql.Tx) error {
		if song.AlbumID != nil {
			var owner int64
			err := tx.QueryRowContext(ctx, `
				SELECT artist_id
				FROM albums
				WHERE id = $1
			`, *song.AlbumID).Scan(&owner)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != song.ArtistID) {
				return ErrAlbumNotFound
			}
			if err != nil {
				return fmt.Errorf("select album: %w", err)
			}
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO songs (artist_id, album_id, name, release_date)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, song.ArtistID, song.AlbumID, song.Name, song.ReleaseDate).Scan(&song.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrArtistNotFound
			}
			return NewWriteError("insert song", err)
		}
		return nil
	})
	if err != nil {
		return models.Song{}, err
	}
	return song, nil
}

// SinglesByArtist returns the artist's songs that are not on any album.
func (s *Store) SinglesByArtist(ctx context.Context, artistID int64) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, artist_id, album_id, name, release_date
		FROM songs
		WHERE artist_id = $1 AND album_id IS NULL
		ORDER BY release_date ASC NULLS LAST, id ASC
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("select singles: %w", err)
	}
	defer rows.Close()

	return scanSongs(rows)
}

func scanSongs(rows *sql.Rows) ([]models.Song, error) {
	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.ArtistID, &song.AlbumID, &song.Name, &song.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}
