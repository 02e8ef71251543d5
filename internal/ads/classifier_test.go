package ads

import "testing"

func TestClassifierIsPublished(t *testing.T) {
	cl := NewClassifier()

	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{
			"doi and volume",
			Record{DOI: []string{"10.1000/x"}, Volume: "42"},
			true,
		},
		{
			"doi and volume with arxiv venue still published",
			Record{DOI: []string{"10.1000/x"}, Volume: "42", Pub: "arXiv e-prints"},
			true,
		},
		{
			"doi without volume alone insufficient",
			Record{DOI: []string{"10.1000/x"}},
			false,
		},
		{
			"article doctype with real venue",
			Record{Doctype: "article", Pub: "Astronomische Nachrichten"},
			true,
		},
		{
			"article doctype with arxiv venue",
			Record{Doctype: "article", Pub: "arXiv e-prints"},
			false,
		},
		{
			"article doctype with eprint venue",
			Record{Doctype: "article", Pub: "eprint"},
			false,
		},
		{
			"article doctype with e-print venue",
			Record{Doctype: "article", Pub: "E-Print"},
			false,
		},
		{
			"article doctype without venue",
			Record{Doctype: "article"},
			false,
		},
		{
			"known journal fragment",
			Record{Pub: "The Astrophysical Journal"},
			true,
		},
		{
			"mnras abbreviation",
			Record{Pub: "MNRAS"},
			true,
		},
		{
			"nature",
			Record{Pub: "Nature Astronomy"},
			true,
		},
		{
			"phys rev",
			Record{Pub: "Phys. Rev. D"},
			true,
		},
		{
			"unknown venue",
			Record{Pub: "Some Preprint Server"},
			false,
		},
		{
			"empty record",
			Record{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cl.IsPublished(tt.rec); got != tt.want {
				t.Errorf("IsPublished(%+v) = %v, want %v", tt.rec, got, tt.want)
			}
		})
	}
}

func TestClassifierExtraFragments(t *testing.T) {
	cl := NewClassifier("Zenodo Proceedings")
	rec := Record{Pub: "Zenodo Proceedings Vol 3"}
	if !cl.IsPublished(rec) {
		t.Errorf("IsPublished() should honor extra fragments")
	}

	base := NewClassifier()
	if base.IsPublished(rec) {
		t.Errorf("default classifier should not know the extra fragment")
	}
}
