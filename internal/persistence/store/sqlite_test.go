package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"shudao.quest/internal/protocol"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store", "test.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	blob := []byte(`{"id":"p1","name":"测试者","exp":266}`)
	if err := s.SavePlayer("p1", blob); err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}

	got, ok, err := s.LoadPlayer("p1")
	if err != nil || !ok {
		t.Fatalf("LoadPlayer: ok=%v err=%v", ok, err)
	}
	if string(got) != string(blob) {
		t.Fatalf("loaded %s, want %s", got, blob)
	}

	// Overwrite replaces, never appends.
	blob2 := []byte(`{"id":"p1","name":"测试者","exp":500}`)
	if err := s.SavePlayer("p1", blob2); err != nil {
		t.Fatalf("SavePlayer overwrite: %v", err)
	}
	got, _, _ = s.LoadPlayer("p1")
	if string(got) != string(blob2) {
		t.Fatalf("loaded %s after overwrite, want %s", got, blob2)
	}
}

func TestLoad_MissingPlayer(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.LoadPlayer("nobody")
	if err != nil {
		t.Fatalf("LoadPlayer: %v", err)
	}
	if ok {
		t.Fatalf("missing player must read as absent")
	}
}

func TestSave_RejectsBadInput(t *testing.T) {
	s := openTestStore(t)

	if err := s.SavePlayer("", []byte(`{}`)); err == nil {
		t.Fatalf("empty id must be rejected")
	}
	if err := s.SavePlayer("p1", []byte(`{"broken`)); err == nil {
		t.Fatalf("invalid JSON must be rejected")
	}
	if _, ok, _ := s.LoadPlayer("p1"); ok {
		t.Fatalf("rejected save must not persist")
	}
}

func TestTTL_ExpiredSaveReadsAsAbsent(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	if err := s.SavePlayer("p1", []byte(`{"id":"p1"}`)); err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}

	s.now = func() time.Time { return base.Add(DefaultTTL - time.Hour) }
	if _, ok, _ := s.LoadPlayer("p1"); !ok {
		t.Fatalf("save inside TTL must still load")
	}

	s.now = func() time.Time { return base.Add(DefaultTTL + time.Hour) }
	if _, ok, _ := s.LoadPlayer("p1"); ok {
		t.Fatalf("expired save must read as absent")
	}

	// A fresh save under the same id resets the clock.
	if err := s.SavePlayer("p1", []byte(`{"id":"p1"}`)); err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}
	if _, ok, _ := s.LoadPlayer("p1"); !ok {
		t.Fatalf("re-saved player must load")
	}
}

func TestPurgeExpired(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	for i := 0; i < 3; i++ {
		if err := s.SavePlayer(fmt.Sprintf("old_%d", i), []byte(`{}`)); err != nil {
			t.Fatalf("SavePlayer: %v", err)
		}
	}
	s.now = func() time.Time { return base.Add(time.Hour) }
	if err := s.SavePlayer("fresh", []byte(`{}`)); err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}

	s.now = func() time.Time { return base.Add(DefaultTTL + time.Minute) }
	n, err := s.PurgeExpired()
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("purged %d rows, want 3", n)
	}
	if _, ok, _ := s.LoadPlayer("fresh"); !ok {
		t.Fatalf("live save must survive the purge")
	}
}

func TestLeaderboard_UpsertAndOrder(t *testing.T) {
	s := openTestStore(t)

	subs := []protocol.LeaderboardSubmit{
		{PlayerID: "a", PlayerName: "甲", Exp: 100, Realm: 1},
		{PlayerID: "b", PlayerName: "乙", Exp: 900, Realm: 3},
		{PlayerID: "c", PlayerName: "丙", Exp: 500, Realm: 2},
	}
	for _, sub := range subs {
		if err := s.SubmitScore(sub); err != nil {
			t.Fatalf("SubmitScore: %v", err)
		}
	}

	rows, err := s.Leaderboard()
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range []string{"b", "c", "a"} {
		if rows[i].PlayerID != want {
			t.Fatalf("rank %d = %s, want %s", i, rows[i].PlayerID, want)
		}
	}

	// Re-submitting updates the row in place.
	if err := s.SubmitScore(protocol.LeaderboardSubmit{PlayerID: "a", PlayerName: "甲", Exp: 2000, Realm: 4}); err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	rows, _ = s.Leaderboard()
	if len(rows) != 3 || rows[0].PlayerID != "a" || rows[0].Exp != 2000 {
		t.Fatalf("upsert did not move player a to the top: %+v", rows)
	}
}

func TestLeaderboard_CapsAtLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < LeaderboardLimit+20; i++ {
		sub := protocol.LeaderboardSubmit{
			PlayerID:   fmt.Sprintf("p%03d", i),
			PlayerName: fmt.Sprintf("修士%d", i),
			Exp:        int64(i * 10),
			Realm:      1,
		}
		if err := s.SubmitScore(sub); err != nil {
			t.Fatalf("SubmitScore: %v", err)
		}
	}

	rows, err := s.Leaderboard()
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != LeaderboardLimit {
		t.Fatalf("rows = %d, want cap %d", len(rows), LeaderboardLimit)
	}
	// The lowest scores fell off the board.
	for _, r := range rows {
		if r.Exp < 200 {
			t.Fatalf("low score %d survived the cap", r.Exp)
		}
	}
}

func TestForEachPlayer_SkipsExpired(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	_ = s.SavePlayer("old", []byte(`{"id":"old"}`))
	s.now = func() time.Time { return base.Add(DefaultTTL / 2) }
	_ = s.SavePlayer("live", []byte(`{"id":"live"}`))

	s.now = func() time.Time { return base.Add(DefaultTTL + time.Minute) }
	var seen []string
	err := s.ForEachPlayer(func(id string, data []byte) error {
		seen = append(seen, id)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachPlayer: %v", err)
	}
	if len(seen) != 1 || seen[0] != "live" {
		t.Fatalf("seen = %v, want [live]", seen)
	}
}
