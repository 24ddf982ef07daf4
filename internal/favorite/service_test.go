package favorite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/project"
)

type fakeFavoriteRepo struct {
	favorites []*Favorite
	nextID    int64
}

func (f *fakeFavoriteRepo) Add(_ context.Context, favorite *Favorite) error {
	for _, existing := range f.favorites {
		if existing.UserID == favorite.UserID &&
			existing.ProjectID == favorite.ProjectID {
			return core.ErrDuplicateKey
		}
	}
	f.nextID++
	favorite.ID = f.nextID
	favorite.CreatedAt = time.Now()
	copied := *favorite
	f.favorites = append(f.favorites, &copied)
	return nil
}

func (f *fakeFavoriteRepo) Remove(
	_ context.Context,
	userID, projectID int64,
) error {
	for i, favorite := range f.favorites {
		if favorite.UserID == userID && favorite.ProjectID == projectID {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeFavoriteRepo) ListByUser(
	_ context.Context,
	userID int64,
) ([]Favorite, error) {
	var result []Favorite
	for _, favorite := range f.favorites {
		if favorite.UserID == userID {
			result = append(result, *favorite)
		}
	}
	return result, nil
}

type fakeBrowser struct {
	summaries map[int64]project.ProjectSummary
}

func (f *fakeBrowser) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.summaries[id]
	return ok, nil
}

func (f *fakeBrowser) Summaries(
	_ context.Context,
	ids []int64,
) (map[int64]project.ProjectSummary, error) {
	result := map[int64]project.ProjectSummary{}
	for _, id := range ids {
		if summary, ok := f.summaries[id]; ok {
			result[id] = summary
		}
	}
	return result, nil
}

func newFavoriteFixture() (*Service, *fakeFavoriteRepo) {
	repo := &fakeFavoriteRepo{}
	browser := &fakeBrowser{summaries: map[int64]project.ProjectSummary{
		5: {
			ID:     5,
			Titulo: "Estufa automatizada",
			Autor:  project.UserRef{ID: 10, Nome: "Ana"},
		},
	}}
	return NewService(repo, browser), repo
}

func TestAddFavorite(t *testing.T) {
	svc, _ := newFavoriteFixture()

	favorite, err := svc.Add(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if favorite.ID == 0 || favorite.ProjectID != 5 {
		t.Fatalf("unexpected favorite %+v", favorite)
	}
}

func TestAddFavoriteMissingProject(t *testing.T) {
	svc, repo := newFavoriteFixture()

	_, err := svc.Add(context.Background(), 2, 404)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(repo.favorites) != 0 {
		t.Fatal("favorite must not be stored for a missing project")
	}
}

func TestAddFavoriteTwiceConflicts(t *testing.T) {
	svc, _ := newFavoriteFixture()

	if _, err := svc.Add(context.Background(), 2, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, err := svc.Add(context.Background(), 2, 5)
	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Message != "Projeto já está nos favoritos" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func TestListFavorites(t *testing.T) {
	svc, _ := newFavoriteFixture()

	if _, err := svc.Add(context.Background(), 2, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}

	favorites, err := svc.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favorites))
	}
	if favorites[0].Projeto.Titulo != "Estufa automatizada" {
		t.Fatalf("project not joined: %+v", favorites[0])
	}
	if favorites[0].Projeto.Autor.Nome != "Ana" {
		t.Fatalf("author missing: %+v", favorites[0].Projeto.Autor)
	}

	// Other users see their own list only.
	other, err := svc.List(context.Background(), 9)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty list, got %d", len(other))
	}
}

func TestRemoveFavorite(t *testing.T) {
	svc, repo := newFavoriteFixture()

	if _, err := svc.Add(context.Background(), 2, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Remove(context.Background(), 2, 5); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(repo.favorites) != 0 {
		t.Fatal("favorite not removed")
	}

	if err := svc.Remove(context.Background(), 2, 5); !errors.Is(
		err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
