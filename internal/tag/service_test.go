package tag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type fakeTagRepo struct {
	byName map[string]*Tag
	nextID int64
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{byName: map[string]*Tag{}}
}

func (f *fakeTagRepo) Create(_ context.Context, tag *Tag) error {
	if _, exists := f.byName[tag.Name]; exists {
		return core.ErrDuplicateKey
	}
	f.nextID++
	tag.ID = f.nextID
	copied := *tag
	f.byName[tag.Name] = &copied
	return nil
}

func (f *fakeTagRepo) GetByID(_ context.Context, id int64) (*Tag, error) {
	for _, tag := range f.byName {
		if tag.ID == id {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeTagRepo) GetByName(_ context.Context, name string) (*Tag, error) {
	tag, ok := f.byName[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagRepo) List(_ context.Context) ([]Tag, error) {
	tags := make([]Tag, 0, len(f.byName))
	for _, tag := range f.byName {
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (f *fakeTagRepo) Search(
	_ context.Context,
	term string,
	_, _ int,
) ([]Tag, int, error) {
	var tags []Tag
	for _, tag := range f.byName {
		if strings.Contains(
			strings.ToLower(tag.Name), strings.ToLower(term)) {
			tags = append(tags, *tag)
		}
	}
	return tags, len(tags), nil
}

func (f *fakeTagRepo) Update(_ context.Context, tag *Tag) error {
	for name, existing := range f.byName {
		if existing.ID != tag.ID && name == tag.Name {
			return core.ErrDuplicateKey
		}
	}
	for name, existing := range f.byName {
		if existing.ID == tag.ID {
			delete(f.byName, name)
			copied := *tag
			f.byName[tag.Name] = &copied
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeTagRepo) Delete(_ context.Context, id int64) error {
	for name, tag := range f.byName {
		if tag.ID == id {
			delete(f.byName, name)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeTagRepo) FindOrCreate(
	ctx context.Context,
	name string,
) (*Tag, error) {
	if tag, ok := f.byName[name]; ok {
		copied := *tag
		return &copied, nil
	}
	tag := &Tag{Name: name}
	if err := f.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func TestCreateDuplicateTag(t *testing.T) {
	svc := NewService(newFakeTagRepo())

	if _, err := svc.Create(context.Background(), "IoT"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Create(context.Background(), "IoT")
	var appErr *core.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Message != "Tag já existe" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func TestUpdateToExistingName(t *testing.T) {
	repo := newFakeTagRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), "IoT"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	robotics, err := svc.Create(context.Background(), "Robótica")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), robotics.ID, "IoT")
	var appErr *core.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	repo := newFakeTagRepo()
	svc := NewService(repo)

	existing, err := svc.Create(context.Background(), "IoT")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tags, err := svc.Resolve(context.Background(),
		[]string{"IoT", "Robótica", "", "IoT", "Robótica"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(tags) != 2 {
		t.Fatalf("expected 2 tags after dedup, got %d", len(tags))
	}
	if tags[0].ID != existing.ID {
		t.Fatalf("existing tag re-created: got id %d", tags[0].ID)
	}
	if tags[1].Name != "Robótica" || tags[1].ID == 0 {
		t.Fatalf("missing tag not created: %+v", tags[1])
	}

	// Names are matched exactly; different casing yields a new tag.
	again, err := svc.Resolve(context.Background(), []string{"iot"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if again[0].ID == existing.ID {
		t.Fatal("case-different name should not match the existing tag")
	}
}
