package db

import (
	"testing"
	"testing/fstest"
)

func TestPendingCandidatesOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_geo.up.sql":    {Data: []byte("SELECT 1")},
		"0001_init.up.sql":   {Data: []byte("SELECT 1")},
		"0001_init.down.sql": {Data: []byte("SELECT 1")},
		"README.md":          {Data: []byte("notes")},
		"old/0000.up.sql":    {Data: []byte("SELECT 1")},
	}

	got, err := pendingCandidates(fsys)
	if err != nil {
		t.Fatalf("pendingCandidates: %v", err)
	}
	want := []string{"0001_init.up.sql", "0002_geo.up.sql"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
