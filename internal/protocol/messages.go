package protocol

import "encoding/json"

// Save (client -> server). PlayerData is the opaque save blob; the server
// requires its presence but does not interpret it beyond schema checks.
type SaveRequest struct {
	PlayerID   string          `json:"playerId"`
	PlayerData json.RawMessage `json:"playerData"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Load (client -> server); playerId also accepted as a query parameter on GET.
type LoadRequest struct {
	PlayerID string `json:"playerId"`
}

type LoadResponse struct {
	Success    bool            `json:"success"`
	PlayerData json.RawMessage `json:"playerData,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Leaderboard submit (client -> server). Upserts by PlayerID.
type LeaderboardSubmit struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Exp        int64  `json:"exp"`
	Realm      int    `json:"realm"`
}

type LeaderboardEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Exp        int64  `json:"exp"`
	Realm      int    `json:"realm"`
	UpdatedAt  int64  `json:"updatedAt"`
}

type LeaderboardResponse struct {
	Success     bool               `json:"success"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Error       string             `json:"error,omitempty"`
}

// LiveUpdate is pushed over the /api/live websocket whenever the leaderboard
// changes.
type LiveUpdate struct {
	Type        string             `json:"type"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
