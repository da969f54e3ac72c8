package models

import (
	"reflect"
	"testing"
)

func TestMetadataFillFrom(t *testing.T) {
	donor := &Metadata{
		ExternalID: 603,
		Title:      "Matrix",
		PosterURL:  "http://img/matrix.jpg",
		Genres:     []string{"Action", "Sci-Fi"},
	}

	m := &Metadata{Overview: "Sinopse local."}
	if !m.FillFrom(donor) {
		t.Fatal("expected missing fields to be filled")
	}
	if m.ExternalID != 603 || m.Title != "Matrix" || m.PosterURL != donor.PosterURL {
		t.Errorf("missing fields not filled: %+v", m)
	}
	if m.Overview != "Sinopse local." {
		t.Errorf("existing field must not be replaced, got %q", m.Overview)
	}
	if !reflect.DeepEqual(m.Genres, donor.Genres) {
		t.Errorf("genres not filled: %v", m.Genres)
	}

	if m.FillFrom(donor) {
		t.Error("a second fill from the same donor must report no change")
	}
	if (&Metadata{Title: "X"}).FillFrom(nil) {
		t.Error("nil donor must report no change")
	}
	if (&Metadata{}).FillFrom(&Metadata{}) {
		t.Error("an empty donor must report no change")
	}
}
