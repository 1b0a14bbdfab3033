package models

import (
	"fmt"
	"strconv"
	"strings"
)

// NewGenreOption is the form value asking for a genre to be created from free text.
const NewGenreOption = "new"

// GenreSelection is the genre part of a venue or artist form: existing genre ids plus
// an optional name for a genre that should be created alongside the entity.
type GenreSelection struct {
	IDs     []int64
	NewName string
}

// WantsNew reports whether a new genre should be created.
func (g GenreSelection) WantsNew() bool {
	return strings.TrimSpace(g.NewName) != ""
}

// ParseGenreSelection converts raw form values into a GenreSelection. The
// NewGenreOption sentinel enables newName; without it newName is ignored.
func ParseGenreSelection(values []string, newName string) (GenreSelection, error) {
	var (
		sel      GenreSelection
		wantsNew bool
		seen     = make(map[int64]struct{}, len(values))
	)

	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.EqualFold(raw, NewGenreOption) {
			wantsNew = true
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return GenreSelection{}, fmt.Errorf("invalid genre id %q", raw)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sel.IDs = append(sel.IDs, id)
	}

	if wantsNew {
		name := strings.TrimSpace(newName)
		if name == "" {
			return GenreSelection{}, fmt.Errorf("new genre name is required")
		}
		sel.NewName = name
	}

	return sel, nil
}
