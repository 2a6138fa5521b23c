package usecase

import (
	"context"
	"testing"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/memory"
)

func TestIdentityIndex_Resolve(t *testing.T) {
	repo := memory.NewPlayerRepository([]player.Player{
		{ID: "p1", FullName: "Justin Jefferson Jr", SearchFullName: "justinjefferson", Team: "MIN", Position: "WR", GsisID: "00-0036322"},
		{ID: "p2", FullName: "Sam Smith", SearchFullName: "samsmith", Team: "KC", Position: "TE"},
	})

	index, err := BuildIdentityIndex(context.Background(), repo)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	t.Run("gsis id wins first", func(t *testing.T) {
		playerID, ok := index.Resolve("00-0036322", "Someone Else", "DAL", "QB")
		if !ok || playerID != "p1" {
			t.Fatalf("expected p1 via gsis, got %q ok=%v", playerID, ok)
		}
	})

	t.Run("name team position fallback", func(t *testing.T) {
		playerID, ok := index.Resolve("", "Sam Smith", "KC", "TE")
		if !ok || playerID != "p2" {
			t.Fatalf("expected p2, got %q ok=%v", playerID, ok)
		}
	})

	t.Run("empty team fallback", func(t *testing.T) {
		playerID, ok := index.Resolve("", "Sam Smith", "DEN", "TE")
		if !ok || playerID != "p2" {
			t.Fatalf("expected p2 via teamless key, got %q ok=%v", playerID, ok)
		}
	})

	t.Run("suffix trimmed before lookup", func(t *testing.T) {
		playerID, ok := index.Resolve("", "Justin Jefferson Jr.", "MIN", "WR")
		if !ok || playerID != "p1" {
			t.Fatalf("expected p1 via normalized name, got %q ok=%v", playerID, ok)
		}
	})

	t.Run("no match drops", func(t *testing.T) {
		if _, ok := index.Resolve("", "Unknown Player", "SF", "RB"); ok {
			t.Fatal("expected no match")
		}
	})
}
