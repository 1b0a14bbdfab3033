package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"fyyur/internal/models"
)

// CreateAlbum stores an album for an existing artist.
func (s *Store) CreateAlbum(ctx context.Context, album models.Album) (models.Album, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (artist_id, name, release_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`, album.ArtistID, album.Name, album.ReleaseDate).Scan(&album.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Album{}, ErrArtistNotFound
		}
		return models.Album{}, NewWriteError("insert album", err)
	}
	album.Songs = nil
	return album, nil
}

// AlbumsByArtist returns the artist's albums with their songs attached.
func (s *Store) AlbumsByArtist(ctx context.Context, artistID int64) ([]models.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, artist_id, name, release_date
		FROM albums
		WHERE artist_id = $1
		ORDER BY release_date ASC NULLS LAST, id ASC
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	var (
		albums []models.Album
		ids    []int64
	)
	for rows.Next() {
		var a models.Album
		if err := rows.Scan(&a.ID, &a.ArtistID, &a.Name, &a.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return albums, nil
	}

	songRows, err := s.db.QueryContext(ctx, `
		SELECT id, artist_id, album_id, name, release_date
		FROM songs
		WHERE album_id = ANY($1)
		ORDER BY id ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select album songs: %w", err)
	}
	defer songRows.Close()

	songs, err := scanSongs(songRows)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(albums))
	for i, a := range albums {
		index[a.ID] = i
	}
	for _, song := range songs {
		if i, ok := index[*song.AlbumID]; ok {
			albums[i].Songs = append(albums[i].Songs, song)
		}
	}
	return albums, nil
}
