package movie

import (
	"context"
	"fmt"
	"strings"
)

type Service interface {
	FindSimilar(ctx context.Context, q Query) ([]Movie, error)
}

// Repository is the upstream movie metadata API.
type Repository interface {
	SearchMovies(ctx context.Context, q Query) ([]Movie, error)
	SimilarMovies(ctx context.Context, id int64) ([]Movie, error)
}

type Usecase struct {
	r Repository
}

func NewUsecase(r Repository) *Usecase {
	return &Usecase{r: r}
}

// FindSimilar resolves the title to the first search candidate and returns
// the upstream's similar titles for it, unmodified.
func (uc *Usecase) FindSimilar(ctx context.Context, q Query) ([]Movie, error) {
	q.Title = strings.TrimSpace(q.Title)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	candidates, err := uc.r.SearchMovies(ctx, q)
	if err != nil {
		return nil, UpstreamUnavailable(fmt.Errorf("search %q: %w", q.Title, err))
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	id := candidates[0].ID
	similar, err := uc.r.SimilarMovies(ctx, id)
	if err != nil {
		return nil, UpstreamUnavailable(fmt.Errorf("similar to %d: %w", id, err))
	}
	if similar == nil {
		similar = []Movie{}
	}

	return similar, nil
}
