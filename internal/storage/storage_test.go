package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/refsync/refsync/internal/paper"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "refsync.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPaper(arxivID string) paper.Paper {
	added := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return paper.Paper{
		ArxivID:      arxivID,
		Title:        "Phylogenetic Inference at Scale",
		Authors:      []string{"Jane Smith", "Wei Zhang"},
		Abstract:     "We study likelihood surfaces.",
		Categories:   []string{"q-bio.PE"},
		Published:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Updated:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		PDFURL:       "https://arxiv.org/pdf/" + arxivID,
		ArxivURL:     "https://arxiv.org/abs/" + arxivID,
		Shelves:      []string{},
		Tags:         []string{},
		Status:       paper.StatusToRead,
		AddedAt:      added,
		BibtexSource: paper.SourceArxiv,
	}
}

func TestCreateGetRoundtrip(t *testing.T) {
	db := openTestDB(t)

	p := testPaper("2501.01234")
	p.Tags = []string{"trees"}
	p.CiteKey = "Smith:2025"
	p.Notes = "read section 3"
	syncTime := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	p.LastCitationSync = &syncTime

	if err := db.CreatePaper(p); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	got, err := db.GetPaper("2501.01234")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if got == nil {
		t.Fatal("GetPaper returned nil for existing paper")
	}
	if got.Title != p.Title {
		t.Errorf("Title = %q, want %q", got.Title, p.Title)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Jane Smith" {
		t.Errorf("Authors = %v", got.Authors)
	}
	if got.CiteKey != "Smith:2025" {
		t.Errorf("CiteKey = %q", got.CiteKey)
	}
	if got.Notes != "read section 3" {
		t.Errorf("Notes = %q", got.Notes)
	}
	if got.LastCitationSync == nil || !got.LastCitationSync.Equal(syncTime) {
		t.Errorf("LastCitationSync = %v, want %v", got.LastCitationSync, syncTime)
	}
	if got.Status != paper.StatusToRead {
		t.Errorf("Status = %q", got.Status)
	}
}

func TestGetPaperMissing(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetPaper("9999.99999")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing paper, got %+v", got)
	}
}

func TestUpdatePaperPartial(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreatePaper(testPaper("2501.01234")); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	starred := true
	status := paper.StatusRead
	got, err := db.UpdatePaper("2501.01234", paper.Update{
		Starred: &starred,
		Status:  &status,
	})
	if err != nil {
		t.Fatalf("UpdatePaper: %v", err)
	}
	if got == nil {
		t.Fatal("UpdatePaper returned nil for existing paper")
	}
	if !got.Starred || got.Status != paper.StatusRead {
		t.Errorf("Starred = %v, Status = %q", got.Starred, got.Status)
	}
	// Untouched fields survive
	if got.Title != "Phylogenetic Inference at Scale" {
		t.Errorf("Title changed to %q", got.Title)
	}
}

func TestUpdatePaperCitationFields(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreatePaper(testPaper("2501.01234")); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	pub := true
	source := paper.SourceADS
	bibtex := "@ARTICLE{Smith:2025, ...}"
	journal := "ApJ, 950, 12"
	doi := "10.1000/xyz"
	bibcode := "2025ApJ...950...12S"
	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := db.UpdatePaper("2501.01234", paper.Update{
		IsPublished:      &pub,
		BibtexSource:     &source,
		Bibtex:           &bibtex,
		JournalRef:       &journal,
		DOI:              &doi,
		ADSBibcode:       &bibcode,
		LastCitationSync: &when,
	})
	if err != nil {
		t.Fatalf("UpdatePaper: %v", err)
	}
	if !got.IsPublished || got.BibtexSource != paper.SourceADS {
		t.Errorf("IsPublished = %v, BibtexSource = %q", got.IsPublished, got.BibtexSource)
	}
	if got.JournalRef != journal || got.DOI != doi || got.ADSBibcode != bibcode {
		t.Errorf("citation fields = %q %q %q", got.JournalRef, got.DOI, got.ADSBibcode)
	}
}

func TestUpdatePaperMissing(t *testing.T) {
	db := openTestDB(t)

	starred := true
	got, err := db.UpdatePaper("9999.99999", paper.Update{Starred: &starred})
	if err != nil {
		t.Fatalf("UpdatePaper: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing paper, got %+v", got)
	}
}

func TestDeletePaper(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreatePaper(testPaper("2501.01234")); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	deleted, err := db.DeletePaper("2501.01234")
	if err != nil {
		t.Fatalf("DeletePaper: %v", err)
	}
	if !deleted {
		t.Error("expected deletion of existing paper")
	}

	deleted, err = db.DeletePaper("2501.01234")
	if err != nil {
		t.Fatalf("DeletePaper (second): %v", err)
	}
	if deleted {
		t.Error("expected no-op deletion of missing paper")
	}
}

func TestListPapersOrder(t *testing.T) {
	db := openTestDB(t)

	older := testPaper("2401.00001")
	older.AddedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testPaper("2501.00002")
	newer.AddedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range []paper.Paper{older, newer} {
		if err := db.CreatePaper(p); err != nil {
			t.Fatalf("CreatePaper(%s): %v", p.ArxivID, err)
		}
	}

	papers, err := db.ListPapers(10, 0)
	if err != nil {
		t.Fatalf("ListPapers: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}
	if papers[0].ArxivID != "2501.00002" {
		t.Errorf("first paper = %s, want newest first", papers[0].ArxivID)
	}
}

func TestSearchPapers(t *testing.T) {
	db := openTestDB(t)

	a := testPaper("2501.00001")
	a.Title = "Bayesian phylodynamics"
	a.Tags = []string{"trees", "mcmc"}
	b := testPaper("2501.00002")
	b.Title = "Galaxy rotation curves"
	b.Status = paper.StatusRead
	for _, p := range []paper.Paper{a, b} {
		if err := db.CreatePaper(p); err != nil {
			t.Fatalf("CreatePaper(%s): %v", p.ArxivID, err)
		}
	}

	t.Run("full text", func(t *testing.T) {
		res, err := db.SearchPapers(paper.SearchQuery{Text: "phylodynamics"})
		if err != nil {
			t.Fatalf("SearchPapers: %v", err)
		}
		if res.Total != 1 || len(res.Papers) != 1 || res.Papers[0].ArxivID != "2501.00001" {
			t.Errorf("got total=%d papers=%v", res.Total, res.Papers)
		}
	})

	t.Run("tag filter", func(t *testing.T) {
		res, err := db.SearchPapers(paper.SearchQuery{Tags: []string{"mcmc"}})
		if err != nil {
			t.Fatalf("SearchPapers: %v", err)
		}
		if res.Total != 1 || res.Papers[0].ArxivID != "2501.00001" {
			t.Errorf("got total=%d", res.Total)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		status := paper.StatusRead
		res, err := db.SearchPapers(paper.SearchQuery{Status: &status})
		if err != nil {
			t.Fatalf("SearchPapers: %v", err)
		}
		if res.Total != 1 || res.Papers[0].ArxivID != "2501.00002" {
			t.Errorf("got total=%d", res.Total)
		}
	})

	t.Run("no filters returns all", func(t *testing.T) {
		res, err := db.SearchPapers(paper.SearchQuery{})
		if err != nil {
			t.Fatalf("SearchPapers: %v", err)
		}
		if res.Total != 2 {
			t.Errorf("Total = %d, want 2", res.Total)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := db.SearchPapers(paper.SearchQuery{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("SearchPapers: %v", err)
		}
		if res.Total != 2 || len(res.Papers) != 1 {
			t.Errorf("Total = %d, page size = %d", res.Total, len(res.Papers))
		}
	})
}

func TestAllCiteKeys(t *testing.T) {
	db := openTestDB(t)

	withKey := testPaper("2501.00001")
	withKey.CiteKey = "Smith:2025"
	withoutKey := testPaper("2501.00002")
	for _, p := range []paper.Paper{withKey, withoutKey} {
		if err := db.CreatePaper(p); err != nil {
			t.Fatalf("CreatePaper(%s): %v", p.ArxivID, err)
		}
	}

	keys, err := db.AllCiteKeys()
	if err != nil {
		t.Fatalf("AllCiteKeys: %v", err)
	}
	if len(keys) != 1 || !keys["Smith:2025"] {
		t.Errorf("keys = %v", keys)
	}
}

func TestListUnsynced(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	neverSynced := testPaper("2501.00001")

	publishedSynced := testPaper("2501.00002")
	publishedSynced.IsPublished = true
	publishedSynced.LastCitationSync = &now

	unpublishedSynced := testPaper("2501.00003")
	unpublishedSynced.LastCitationSync = &now

	for _, p := range []paper.Paper{neverSynced, publishedSynced, unpublishedSynced} {
		if err := db.CreatePaper(p); err != nil {
			t.Fatalf("CreatePaper(%s): %v", p.ArxivID, err)
		}
	}

	papers, err := db.ListUnsynced()
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	got := make(map[string]bool)
	for _, p := range papers {
		got[p.ArxivID] = true
	}
	if len(got) != 2 || !got["2501.00001"] || !got["2501.00003"] {
		t.Errorf("unsynced = %v, want never-synced and unpublished papers", got)
	}

	// The SQL filter must agree with the in-memory predicate.
	for _, p := range []paper.Paper{neverSynced, publishedSynced, unpublishedSynced} {
		if p.SyncEligible() != got[p.ArxivID] {
			t.Errorf("SyncEligible(%s) = %v, ListUnsynced included = %v",
				p.ArxivID, p.SyncEligible(), got[p.ArxivID])
		}
	}
}

func TestSetCover(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreatePaper(testPaper("2501.00001")); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	got, err := db.SetCover("2501.00001", "/covers/2501.00001.png")
	if err != nil {
		t.Fatalf("SetCover: %v", err)
	}
	if got.CoverImage != "/covers/2501.00001.png" {
		t.Errorf("CoverImage = %q", got.CoverImage)
	}
}

func TestShelves(t *testing.T) {
	db := openTestDB(t)

	shelf, err := db.CreateShelf("to-review", "queue for journal club")
	if err != nil {
		t.Fatalf("CreateShelf: %v", err)
	}
	if shelf.ID == "" || shelf.Name != "to-review" {
		t.Errorf("shelf = %+v", shelf)
	}

	if _, err := db.CreateShelf("to-review", ""); err != ErrShelfExists {
		t.Errorf("duplicate CreateShelf err = %v, want ErrShelfExists", err)
	}

	p := testPaper("2501.00001")
	p.Shelves = []string{"to-review"}
	if err := db.CreatePaper(p); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	shelves, err := db.ListShelves()
	if err != nil {
		t.Fatalf("ListShelves: %v", err)
	}
	if len(shelves) != 1 || shelves[0].PaperCount != 1 {
		t.Errorf("shelves = %+v", shelves)
	}

	deleted, err := db.DeleteShelf("to-review")
	if err != nil {
		t.Fatalf("DeleteShelf: %v", err)
	}
	if !deleted {
		t.Error("expected deletion of existing shelf")
	}

	// Deleting the shelf clears it from the paper's shelf list
	got, err := db.GetPaper("2501.00001")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if len(got.Shelves) != 0 {
		t.Errorf("Shelves = %v after shelf deletion", got.Shelves)
	}
}

func TestTags(t *testing.T) {
	db := openTestDB(t)

	a := testPaper("2501.00001")
	a.Tags = []string{"trees", "mcmc"}
	b := testPaper("2501.00002")
	b.Tags = []string{"trees"}
	for _, p := range []paper.Paper{a, b} {
		if err := db.CreatePaper(p); err != nil {
			t.Fatalf("CreatePaper(%s): %v", p.ArxivID, err)
		}
	}
	if err := db.SetTagColor("trees", "#00aa00"); err != nil {
		t.Fatalf("SetTagColor: %v", err)
	}

	tags, err := db.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(tags))
	}
	// Sorted by name: mcmc, trees
	if tags[0].Name != "mcmc" || tags[0].PaperCount != 1 {
		t.Errorf("tags[0] = %+v", tags[0])
	}
	if tags[1].Name != "trees" || tags[1].PaperCount != 2 || tags[1].Color != "#00aa00" {
		t.Errorf("tags[1] = %+v", tags[1])
	}

	removed, err := db.DeleteTag("trees")
	if err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if !removed {
		t.Error("expected DeleteTag to report removal")
	}
	got, err := db.GetPaper("2501.00001")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "mcmc" {
		t.Errorf("Tags = %v after tag deletion", got.Tags)
	}
}

func TestPaperExists(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreatePaper(testPaper("2501.00001")); err != nil {
		t.Fatalf("CreatePaper: %v", err)
	}

	exists, err := db.PaperExists("2501.00001")
	if err != nil {
		t.Fatalf("PaperExists: %v", err)
	}
	if !exists {
		t.Error("expected paper to exist")
	}
	exists, err = db.PaperExists("9999.99999")
	if err != nil {
		t.Fatalf("PaperExists: %v", err)
	}
	if exists {
		t.Error("expected paper to be missing")
	}
}
