package records

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPeople(t *testing.T) *Collection {
	t.Helper()
	recs, err := LoadSeed("builtin:people")
	require.NoError(t, err)
	coll, err := NewCollection("people", recs, "country", "livesIn")
	require.NoError(t, err)
	return coll
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.IDString()
	}
	return out
}

// =============================================================================
// Record Tests
// =============================================================================

func TestRecord_MarshalJSONPreservesOrder(t *testing.T) {
	r := New(F("id", 1), F("name", "jonathan"), F("country", "UK"), F("livesIn", "UK"))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"jonathan","country":"UK","livesIn":"UK"}`, string(data))
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"id":"brando","printed":1988,"ratio":0.5,"tags":[1,"a"]}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "printed", "ratio", "tags"}, r.Keys())
	assert.Equal(t, "brando", r.IDString())

	printed, ok := r.Get("printed")
	require.True(t, ok)
	assert.Equal(t, int64(1988), printed)

	ratio, _ := r.Get("ratio")
	assert.Equal(t, 0.5, ratio)

	tags, _ := r.Get("tags")
	assert.Equal(t, []any{int64(1), "a"}, tags)
}

func TestRecord_UnmarshalJSONRejectsNonObject(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
}

func TestRecord_DuplicateKeyReplacesInPlace(t *testing.T) {
	r := New(F("id", 1), F("name", "a"), F("id", 2))
	assert.Equal(t, []string{"id", "name"}, r.Keys())
	assert.Equal(t, "2", r.IDString())
}

func TestRecord_Text(t *testing.T) {
	r := New(F("id", 7), F("score", 1.5), F("gone", nil))

	v, ok := r.Text("id")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	v, ok = r.Text("score")
	assert.True(t, ok)
	assert.Equal(t, "1.5", v)

	_, ok = r.Text("gone")
	assert.False(t, ok, "null values are treated as absent")

	_, ok = r.Text("missing")
	assert.False(t, ok)
}

// =============================================================================
// Collection Tests
// =============================================================================

func TestNewCollection(t *testing.T) {
	tests := []struct {
		name    string
		coll    string
		recs    []Record
		wantErr bool
	}{
		{
			name: "valid records",
			coll: "people",
			recs: []Record{New(F("id", 1)), New(F("id", "two"))},
		},
		{
			name:    "empty name",
			coll:    "",
			wantErr: true,
		},
		{
			name:    "missing id",
			coll:    "people",
			recs:    []Record{New(F("name", "nobody"))},
			wantErr: true,
		},
		{
			name:    "duplicate id across types",
			coll:    "people",
			recs:    []Record{New(F("id", 1)), New(F("id", "1"))},
			wantErr: true,
		},
		{
			name: "no records",
			coll: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCollection(tt.coll, tt.recs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewCollection_DuplicateIDError(t *testing.T) {
	_, err := NewCollection("people", []Record{New(F("id", 1)), New(F("id", 1))})

	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1", dup.ID)
	assert.Equal(t, 1, dup.Index)
}

func TestCollection_Get(t *testing.T) {
	coll := loadPeople(t)

	r, err := coll.Get("brando")
	require.NoError(t, err)
	name, _ := r.Text("name")
	assert.Equal(t, "giorno", name)

	_, err = coll.Get("dio")
	assert.True(t, IsNotFound(err))
}

func TestCollection_QueryNoFiltersReturnsAllInOrder(t *testing.T) {
	coll := loadPeople(t)

	got := coll.Query(nil)
	assert.Equal(t, []string{"1", "3", "5", "4", "brando"}, ids(got))
}

func TestCollection_Query(t *testing.T) {
	coll := loadPeople(t)

	tests := []struct {
		name   string
		params url.Values
		want   []string
	}{
		{"country", url.Values{"country": {"Japan"}}, []string{"5", "4", "brando"}},
		{"country and livesIn", url.Values{"country": {"Japan"}, "livesIn": {"Italy"}}, []string{"brando"}},
		{"livesIn alone", url.Values{"livesIn": {"USA"}}, []string{"3"}},
		{"no match", url.Values{"country": {"France"}}, []string{}},
		{"unrecognized ignored", url.Values{"name": {"jotaro"}}, []string{"1", "3", "5", "4", "brando"}},
		{"empty value ignored", url.Values{"country": {""}}, []string{"1", "3", "5", "4", "brando"}},
		{"first value wins", url.Values{"country": {"UK", "Japan"}}, []string{"1", "3"}},
		{"case sensitive", url.Values{"country": {"japan"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coll.Query(tt.params)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCollection_AnyFieldFilterable(t *testing.T) {
	recs, err := LoadSeed("builtin:books")
	require.NoError(t, err)
	books, err := NewCollection("books", recs)
	require.NoError(t, err)

	assert.True(t, books.Recognizes("author"))
	assert.Equal(t, []string{"2"}, ids(books.Query(url.Values{"id": {"2"}})))
	assert.Equal(t, []string{"2", "4"}, ids(books.Query(url.Values{"printed": {"1988"}})))
}

func TestCollection_FilteringNarrowsMonotonically(t *testing.T) {
	coll := loadPeople(t)
	all := coll.Query(nil)

	values := map[string][]string{
		"country": {"", "UK", "Japan", "Nowhere"},
		"livesIn": {"", "UK", "USA", "Japan", "Italy"},
	}

	for _, country := range values["country"] {
		single := coll.Query(url.Values{"country": {country}})
		assert.Subset(t, ids(all), ids(single))

		for _, livesIn := range values["livesIn"] {
			both := coll.Query(url.Values{"country": {country}, "livesIn": {livesIn}})
			assert.Subset(t, ids(single), ids(both), "country=%q livesIn=%q", country, livesIn)
			assert.LessOrEqual(t, len(both), len(single))
		}
	}
}

// =============================================================================
// Filter Tests
// =============================================================================

func TestParseFilter_RecognizedOrder(t *testing.T) {
	f := ParseFilter(url.Values{"livesIn": {"Italy"}, "country": {"Japan"}, "x": {"1"}}, []string{"country", "livesIn"})
	assert.Equal(t, Filter{{"country", "Japan"}, {"livesIn", "Italy"}}, f)
	assert.Equal(t, "country=Japan&livesIn=Italy", f.Encode())
}

func TestParseFilter_AnyFieldSorted(t *testing.T) {
	f := ParseFilter(url.Values{"title": {"Kitchen"}, "author": {"Banana Yoshimoto"}}, nil)
	assert.Equal(t, Filter{{"author", "Banana Yoshimoto"}, {"title", "Kitchen"}}, f)
}

func TestFilter_With(t *testing.T) {
	base := Filter{{"country", "Japan"}}
	extended := base.With("livesIn", "Italy")

	assert.Len(t, base, 1)
	assert.Len(t, extended, 2)
	assert.Equal(t, url.Values{"country": {"Japan"}, "livesIn": {"Italy"}}, extended.Values())
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "*", Filter(nil).String())
	assert.Equal(t, "author=Banana+Yoshimoto", Filter{{"author", "Banana Yoshimoto"}}.String())
}

// =============================================================================
// Seed Tests
// =============================================================================

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"books", "people"}, Builtins())
}

func TestLoadSeed_UnknownBuiltin(t *testing.T) {
	_, err := LoadSeed("builtin:villains")
	assert.ErrorIs(t, err, ErrUnknownBuiltin)
}

func TestLoadSeed_Files(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "seed.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- id: a\n  zeta: 1\n  alpha: 2\n"), 0o600))
	recs, err := LoadSeed(yamlPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"id", "zeta", "alpha"}, recs[0].Keys())

	jsonPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id":1,"b":true}]`), 0o600))
	recs, err = LoadSeed(jsonPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].IDString())

	emptyPath := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o600))
	_, err = LoadSeed(emptyPath)
	assert.ErrorIs(t, err, ErrEmptySeed)

	_, err = LoadSeed(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDecodeYAML_Invalid(t *testing.T) {
	_, err := DecodeYAML([]byte("id: 1\n"))
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = DecodeYAML([]byte("- just a string\n"))
	assert.ErrorIs(t, err, ErrInvalidSeed)

	recs, err := DecodeYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"id":1}`))
	assert.ErrorIs(t, err, ErrInvalidSeed)
}
