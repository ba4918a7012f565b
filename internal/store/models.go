package store

import (
	"encoding/json"
	"time"
)

// DeriveRun records one persisted derivation
type DeriveRun struct {
	RunID         string          `json:"run_id" db:"run_id"`
	Dataset       string          `json:"dataset" db:"dataset"`
	FirstSeason   int             `json:"first_season" db:"first_season"`
	LastSeason    int             `json:"last_season" db:"last_season"`
	SeasonsLoaded int             `json:"seasons_loaded" db:"seasons_loaded"`
	SeasonRecords int             `json:"season_records" db:"season_records"`
	Players       int             `json:"players" db:"players"`
	Gaps          json.RawMessage `json:"gaps" db:"gaps"`
	StartedAt     time.Time       `json:"started_at" db:"started_at"`
	FinishedAt    time.Time       `json:"finished_at" db:"finished_at"`
}
