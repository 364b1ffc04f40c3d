package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

const directory = `<html><body><form>
<select name="str">
<option value="">-- Straße wählen --</option>
<option value="Weender Straße">Weender Straße</option>
<option value="Albaniplatz">Albaniplatz</option>
<option value=" Goetheallee ">Goetheallee</option>
<option value="Albaniplatz">Albaniplatz</option>
<option>Ohne Wert</option>
</select>
</form></body></html>`

func directoryServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(directory))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestFetch(t *testing.T) {
	var requests int
	ts := directoryServer(t, &requests)

	names, err := NewFetcher(ts.URL, time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Albaniplatz", "Goetheallee", "Weender Straße"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("unexpected names %q", names)
	}
}

func TestFetchStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	if _, err := NewFetcher(ts.URL, time.Second).Fetch(context.Background()); err == nil {
		t.Error("expected error for 404")
	}
}

func TestStore(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, _, ok, err := store.Names("a"); err != nil || ok {
		t.Fatalf("empty store returned ok=%v err=%v", ok, err)
	}

	fetched := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Put("a", []string{"B-Straße", "A-Weg"}, fetched); err != nil {
		t.Fatal(err)
	}
	names, ts, ok, err := store.Names("a")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(names, []string{"A-Weg", "B-Straße"}) {
		t.Errorf("unexpected names %q", names)
	}
	if !ts.Equal(fetched) {
		t.Errorf("unexpected fetch time %s", ts)
	}

	if _, _, ok, _ := store.Names("b"); ok {
		t.Error("names of other source returned")
	}

	if err := store.Put("a", []string{"C-Ring"}, fetched); err != nil {
		t.Fatal(err)
	}
	names, _, _, _ = store.Names("a")
	if !reflect.DeepEqual(names, []string{"C-Ring"}) {
		t.Errorf("old names not replaced %q", names)
	}
}

func TestLoad(t *testing.T) {
	var requests int
	ts := directoryServer(t, &requests)
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	f := NewFetcher(ts.URL, time.Second)
	f.Limiter = nil
	ctx := context.Background()

	for i, refresh := range []bool{false, false, true} {
		names, err := Load(ctx, store, f, refresh)
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 3 {
			t.Errorf("%d: unexpected names %q", i, names)
		}
	}
	if requests != 2 {
		t.Errorf("expected 2 requests, got %d", requests)
	}
}
