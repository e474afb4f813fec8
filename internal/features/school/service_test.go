package school

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harborkids/portal-server/internal/apperror"
)

// --- Mock Repository ---

type mockRepo struct {
	findByIDFn  func(ctx context.Context, id int64) (*School, error)
	getFieldsFn func(ctx context.Context, schoolID int64, keys []string) (map[string]string, error)
	setFieldFn  func(ctx context.Context, schoolID int64, key, value string) error

	// writes captures every SetField call in order.
	writes []fieldWrite
}

type fieldWrite struct {
	key   string
	value string
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*School, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &School{ID: id, Slug: "lakeside", Title: "Lakeside Center"}, nil
}

func (m *mockRepo) FindBySlug(ctx context.Context, slug string) (*School, error) {
	return nil, apperror.NewNotFound("school not found")
}

func (m *mockRepo) FindByDirectorEmail(ctx context.Context, email string) (*School, error) {
	return nil, apperror.NewNotFound("school not found")
}

func (m *mockRepo) GetFields(ctx context.Context, schoolID int64, keys []string) (map[string]string, error) {
	if m.getFieldsFn != nil {
		return m.getFieldsFn(ctx, schoolID, keys)
	}
	return map[string]string{}, nil
}

func (m *mockRepo) SetField(ctx context.Context, schoolID int64, key, value string) error {
	m.writes = append(m.writes, fieldWrite{key: key, value: value})
	if m.setFieldFn != nil {
		return m.setFieldFn(ctx, schoolID, key, value)
	}
	return nil
}

// writtenKeys returns the keys written, in order.
func (m *mockRepo) writtenKeys() []string {
	keys := make([]string, len(m.writes))
	for i, w := range m.writes {
		keys[i] = w.key
	}
	return keys
}

// --- GetContent Tests ---

func TestGetContent_DefaultsForMissingFields(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	content, err := svc.GetContent(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected content, got %v", err)
	}

	if len(content.Content) != len(ContentFields()) {
		t.Errorf("expected %d keys, got %d", len(ContentFields()), len(content.Content))
	}
	for _, key := range ContentFields() {
		value, ok := content.Content[key]
		if !ok {
			t.Errorf("missing key %q in response", key)
			continue
		}
		if IsComplexField(key) {
			if value != nil {
				t.Errorf("expected nil default for complex field %q, got %v", key, value)
			}
		} else if value != "" {
			t.Errorf("expected empty string default for scalar field %q, got %v", key, value)
		}
	}
}

func TestGetContent_DecodesStoredValues(t *testing.T) {
	repo := &mockRepo{
		getFieldsFn: func(ctx context.Context, schoolID int64, keys []string) (map[string]string, error) {
			return map[string]string{
				"announcements": `[{"title":"Picture Day"}]`,
				"menu":          "<p>Tacos</p>",
			}, nil
		},
	}
	svc := NewService(repo)

	content, err := svc.GetContent(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected content, got %v", err)
	}

	announcements, ok := content.Content["announcements"].([]any)
	if !ok || len(announcements) != 1 {
		t.Errorf("expected decoded announcements array, got %v", content.Content["announcements"])
	}
	if content.Content["menu"] != "<p>Tacos</p>" {
		t.Errorf("expected stored menu verbatim, got %v", content.Content["menu"])
	}
}

func TestGetContent_CorruptComplexFieldDegradesToNull(t *testing.T) {
	repo := &mockRepo{
		getFieldsFn: func(ctx context.Context, schoolID int64, keys []string) (map[string]string, error) {
			return map[string]string{"slideshow": "{not json"}, nil
		},
	}
	svc := NewService(repo)

	content, err := svc.GetContent(context.Background(), 7)
	if err != nil {
		t.Fatalf("a corrupt field must not fail the read, got %v", err)
	}
	if content.Content["slideshow"] != nil {
		t.Errorf("expected null for corrupt document, got %v", content.Content["slideshow"])
	}
}

func TestGetContent_UnknownSchool(t *testing.T) {
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*School, error) {
			return nil, apperror.NewNotFound("school not found")
		},
	}
	svc := NewService(repo)

	_, err := svc.GetContent(context.Background(), 99)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

// --- PatchContent Tests ---

func TestPatchContent_UnknownKeysNeverWritten(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	patch := PatchRequest{
		"menu":           json.RawMessage(`"<p>Tacos</p>"`),
		"director_email": json.RawMessage(`"evil@example.com"`),
		"last_updated":   json.RawMessage(`"0"`),
		"drop_table":     json.RawMessage(`"x"`),
	}

	if err := svc.PatchContent(context.Background(), 7, patch); err != nil {
		t.Fatalf("expected patch to succeed, got %v", err)
	}

	for _, w := range repo.writes {
		if w.key == "director_email" || w.key == "drop_table" {
			t.Errorf("non-allowlisted key %q was written", w.key)
		}
	}
	// Exactly: the one allowlisted field plus the stamp.
	keys := repo.writtenKeys()
	if len(keys) != 2 || keys[0] != "menu" || keys[1] != "last_updated" {
		t.Errorf("expected [menu last_updated], got %v", keys)
	}
}

func TestPatchContent_ComplexFieldReplacedWholesale(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	doc := `[{"title":"Picture Day","date":"2026-09-15"}]`
	patch := PatchRequest{"announcements": json.RawMessage(doc)}

	if err := svc.PatchContent(context.Background(), 7, patch); err != nil {
		t.Fatalf("expected patch to succeed, got %v", err)
	}

	if repo.writes[0].key != "announcements" || repo.writes[0].value != doc {
		t.Errorf("expected document stored verbatim, got %+v", repo.writes[0])
	}
}

func TestPatchContent_ScalarFieldSanitized(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	patch := PatchRequest{
		"menu": json.RawMessage(`"<p>Tacos</p><script>alert(1)</script>"`),
	}

	if err := svc.PatchContent(context.Background(), 7, patch); err != nil {
		t.Fatalf("expected patch to succeed, got %v", err)
	}

	stored := repo.writes[0].value
	if strings.Contains(stored, "<script>") {
		t.Errorf("script tag survived sanitization: %s", stored)
	}
	if !strings.Contains(stored, "<p>Tacos</p>") {
		t.Errorf("formatting markup was stripped: %s", stored)
	}
}

func TestPatchContent_NonStringScalarRejected(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	patch := PatchRequest{"menu": json.RawMessage(`{"nested":"object"}`)}

	err := svc.PatchContent(context.Background(), 7, patch)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 422 {
		t.Fatalf("expected 422, got %v", err)
	}
	if len(repo.writes) != 0 {
		t.Errorf("rejected patch must write nothing, wrote %v", repo.writtenKeys())
	}
}

func TestPatchContent_StampsLastUpdated(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	before := time.Now().Unix()
	patch := PatchRequest{"youtube": json.RawMessage(`"https://youtube.com/watch?v=abc"`)}
	if err := svc.PatchContent(context.Background(), 7, patch); err != nil {
		t.Fatalf("expected patch to succeed, got %v", err)
	}
	after := time.Now().Unix()

	last := repo.writes[len(repo.writes)-1]
	if last.key != "last_updated" {
		t.Fatalf("expected final write to be last_updated, got %s", last.key)
	}
	stamp, err := strconv.ParseInt(last.value, 10, 64)
	if err != nil {
		t.Fatalf("stamp is not a unix timestamp: %v", err)
	}
	if stamp < before || stamp > after {
		t.Errorf("stamp %d outside [%d, %d]", stamp, before, after)
	}
}

func TestPatchContent_EmptyPatchStillStamps(t *testing.T) {
	// A body with only unknown keys behaves like an empty patch: nothing
	// but the stamp is written.
	repo := &mockRepo{}
	svc := NewService(repo)

	if err := svc.PatchContent(context.Background(), 7, PatchRequest{}); err != nil {
		t.Fatalf("expected empty patch to succeed, got %v", err)
	}

	keys := repo.writtenKeys()
	if len(keys) != 1 || keys[0] != "last_updated" {
		t.Errorf("expected only the stamp, got %v", keys)
	}
}

func TestPatchContent_StorageFailureAborts(t *testing.T) {
	repo := &mockRepo{
		setFieldFn: func(ctx context.Context, schoolID int64, key, value string) error {
			return errors.New("disk full")
		},
	}
	svc := NewService(repo)

	patch := PatchRequest{"menu": json.RawMessage(`"<p>Tacos</p>"`)}
	err := svc.PatchContent(context.Background(), 7, patch)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 500 {
		t.Fatalf("expected 500, got %v", err)
	}
}
