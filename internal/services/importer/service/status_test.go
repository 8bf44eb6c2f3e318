package service

import (
	"fmt"
	"testing"

	"redditimport/internal/services/importer/domain"
)

func TestBoardLifecycle(t *testing.T) {
	t.Parallel()

	b := newBoard()
	b.begin("run-1", "/data")
	b.start("/data/b", domain.FileReport{Path: "/data/b"})
	b.start("/data/a", domain.FileReport{Path: "/data/a"})
	b.update("/data/a", domain.FileReport{Path: "/data/a", Committed: 7})
	b.update("/data/zzz", domain.FileReport{Path: "/data/zzz"})

	st := b.snapshot()
	if !st.Running || st.RunID != "run-1" || len(st.Active) != 2 {
		t.Fatalf("snapshot = %+v", st)
	}
	if st.Active[0].Path != "/data/a" || st.Active[0].Committed != 7 {
		t.Fatalf("active not sorted or not updated: %+v", st.Active)
	}

	b.finish("/data/a", domain.FileReport{Path: "/data/a", Status: domain.StatusOK})
	b.end(domain.Summary{RunID: "run-1", OK: 1})
	st = b.snapshot()
	if st.Running || len(st.Active) != 1 || len(st.Recent) != 1 || st.Recent[0].Status != domain.StatusOK {
		t.Fatalf("snapshot after finish = %+v", st)
	}
}

func TestBoardRecentIsBounded(t *testing.T) {
	t.Parallel()

	b := newBoard()
	b.begin("run", "/d")
	for i := range recentCap + 10 {
		p := fmt.Sprintf("/d/%03d", i)
		b.start(p, domain.FileReport{Path: p})
		b.finish(p, domain.FileReport{Path: p})
	}
	st := b.snapshot()
	if len(st.Recent) != recentCap || st.Recent[0].Path != "/d/010" {
		t.Fatalf("recent = %d first=%s", len(st.Recent), st.Recent[0].Path)
	}
}
