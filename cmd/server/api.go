package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"shudao.quest/internal/game/catalogs"
	persistlog "shudao.quest/internal/persistence/log"
	"shudao.quest/internal/persistence/store"
	"shudao.quest/internal/protocol"
	"shudao.quest/internal/transport/ws"
)

type api struct {
	log   *log.Logger
	store *store.Store
	audit *persistlog.AuditLogger
	live  *ws.LiveFeed
	cats  *catalogs.Catalogs
}

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/load", a.withCORS(a.handleLoad))
	mux.HandleFunc("/api/save", a.withCORS(a.handleSave))
	mux.HandleFunc("/api/leaderboard", a.withCORS(a.handleLeaderboard))
	mux.HandleFunc("/api/catalogs", a.withCORS(a.handleCatalogs))
	mux.HandleFunc("/api/live", a.live.Handler())
}

// withCORS opens every API route to browser clients and answers the
// preflight with 204 and the allow headers.
func (a *api) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Access-Control-Allow-Origin", "*")
		rw.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		rw.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			rw.WriteHeader(http.StatusNoContent)
			return
		}
		next(rw, r)
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

// handleLoad serves GET with ?playerId= or POST with a JSON body. A missing
// save is a success with no playerData, mirroring the original backend.
func (a *api) handleLoad(rw http.ResponseWriter, r *http.Request) {
	var playerID string
	switch r.Method {
	case http.MethodGet:
		playerID = strings.TrimSpace(r.URL.Query().Get("playerId"))
	case http.MethodPost:
		var req protocol.LoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(rw, http.StatusBadRequest, protocol.LoadResponse{Error: "invalid JSON body"})
			return
		}
		playerID = strings.TrimSpace(req.PlayerID)
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if playerID == "" {
		writeJSON(rw, http.StatusBadRequest, protocol.LoadResponse{Error: "missing playerId"})
		return
	}

	data, found, err := a.store.LoadPlayer(playerID)
	if err != nil {
		a.log.Printf("load %s: %v", playerID, err)
		writeJSON(rw, http.StatusInternalServerError, protocol.LoadResponse{Error: "load failed"})
		return
	}
	if !found {
		writeJSON(rw, http.StatusOK, protocol.LoadResponse{Success: true})
		return
	}
	writeJSON(rw, http.StatusOK, protocol.LoadResponse{Success: true, PlayerData: data})
}

func (a *api) handleSave(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req protocol.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, protocol.SaveResponse{Error: "invalid JSON body"})
		return
	}
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" || len(req.PlayerData) == 0 {
		writeJSON(rw, http.StatusBadRequest, protocol.SaveResponse{Error: "missing playerId or playerData"})
		return
	}

	if err := a.store.SavePlayer(playerID, req.PlayerData); err != nil {
		a.log.Printf("save %s: %v", playerID, err)
		writeJSON(rw, http.StatusInternalServerError, protocol.SaveResponse{Error: "save failed"})
		return
	}
	a.writeAudit("save", playerID, "")
	writeJSON(rw, http.StatusOK, protocol.SaveResponse{Success: true})
}

func (a *api) handleLeaderboard(rw http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		// fall through to the read below
	case http.MethodPost:
		var sub protocol.LeaderboardSubmit
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(rw, http.StatusBadRequest, protocol.LeaderboardResponse{Error: "invalid JSON body"})
			return
		}
		if strings.TrimSpace(sub.PlayerID) == "" {
			writeJSON(rw, http.StatusBadRequest, protocol.LeaderboardResponse{Error: "missing playerId"})
			return
		}
		if err := a.store.SubmitScore(sub); err != nil {
			a.log.Printf("leaderboard submit %s: %v", sub.PlayerID, err)
			writeJSON(rw, http.StatusInternalServerError, protocol.LeaderboardResponse{Error: "submit failed"})
			return
		}
		a.writeAudit("leaderboard", sub.PlayerID, sub.PlayerName)
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := a.store.Leaderboard()
	if err != nil {
		a.log.Printf("leaderboard read: %v", err)
		writeJSON(rw, http.StatusInternalServerError, protocol.LeaderboardResponse{Error: "read failed"})
		return
	}
	if r.Method == http.MethodPost {
		a.live.Broadcast(entries)
	}
	writeJSON(rw, http.StatusOK, protocol.LeaderboardResponse{Success: true, Leaderboard: entries})
}

// handleCatalogs exposes the rule-table digests so a client can detect a
// content mismatch against its bundled data.
func (a *api) handleCatalogs(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{
		"items":   a.cats.Items.Digest,
		"recipes": a.cats.Recipes.Digest,
		"skills":  a.cats.Skills.Digest,
		"shop":    a.cats.Shop.Digest,
	})
}

func (a *api) writeAudit(kind, playerID, detail string) {
	if a.audit == nil {
		return
	}
	if err := a.audit.Write(persistlog.Entry{Time: time.Now().UTC(), Kind: kind, PlayerID: playerID, Detail: detail}); err != nil {
		a.log.Printf("audit write: %v", err)
	}
}
