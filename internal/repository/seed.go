package repository

import (
	"context"
	"errors"
	"fmt"

	"docgate/internal/model"
)

// Seed inserts docs into repo, skipping ids that already exist.
// It returns the number of records actually inserted.
func Seed(ctx context.Context, repo DocumentRepository, docs []model.Document) (int, error) {
	n := 0
	for _, d := range docs {
		if _, err := repo.Insert(ctx, d); err != nil {
			if errors.Is(err, ErrDuplicateID) {
				continue
			}
			return n, fmt.Errorf("seed document %s: %w", d.ID, err)
		}
		n++
	}
	return n, nil
}
