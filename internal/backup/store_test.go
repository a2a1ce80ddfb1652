package backup

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/surface"
)

func TestMain(m *testing.M) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	os.Exit(m.Run())
}

type failingKV struct{}

func (failingKV) Get(string) (string, error) { return "", errors.New("storage disabled") }
func (failingKV) Set(string, string) error   { return errors.New("quota exceeded") }

func TestRecordWireFormat(t *testing.T) {
	rec := Record{
		Version: time.UnixMilli(1700000000123),
		Content: "# hi",
		Cursor:  surface.Position{Line: 0, Ch: 4},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"val":"# hi","ver":1700000000123,"cur":{"line":0,"ch":4}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Version.Equal(rec.Version) || back.Content != rec.Content || back.Cursor != rec.Cursor {
		t.Errorf("Unmarshal mismatch: %+v", back)
	}
}

func TestStore(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv)

	t.Run("missing key", func(t *testing.T) {
		if _, ok := store.Load("nope"); ok {
			t.Error("Expected no record")
		}
	})

	t.Run("save then load", func(t *testing.T) {
		rec := Record{Version: time.UnixMilli(1000), Content: "text", Cursor: surface.Position{Line: 1, Ch: 2}}
		store.Save("k", rec)

		got, ok := store.Load("k")
		if !ok {
			t.Fatal("Expected record")
		}
		if diff := cmp.Diff(rec.Content, got.Content); diff != "" {
			t.Errorf("Content mismatch (-want +got):\n%s", diff)
		}
		if got.Cursor != rec.Cursor {
			t.Errorf("Cursor = %v, want %v", got.Cursor, rec.Cursor)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		store.Save("k", Record{Version: time.UnixMilli(2000), Content: "newer"})
		got, _ := store.Load("k")
		if got.Content != "newer" {
			t.Errorf("Expected newer content, got %q", got.Content)
		}
	})

	t.Run("clear", func(t *testing.T) {
		store.Clear("k")
		if _, ok := store.Load("k"); ok {
			t.Error("Expected cleared record to be absent")
		}
	})

	t.Run("corrupt json", func(t *testing.T) {
		kv.Set("bad", "{not json")
		if _, ok := store.Load("bad"); ok {
			t.Error("Expected corrupt record to be ignored")
		}
	})
}

func TestStoreSwallowsFailures(t *testing.T) {
	store := NewStore(failingKV{})

	store.Save("k", Record{Content: "x"})
	store.Clear("k")
	if _, ok := store.Load("k"); ok {
		t.Error("Expected failing storage to behave as empty")
	}
}
