package progression

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/telemetry"

	_ "modernc.org/sqlite"
)

// MatchResult is one row per finished match.
type MatchResult struct {
	MatchID    string
	Preset     string
	Seed       int64
	Ticks      int
	HomeScore  int
	AwayScore  int
	Pops       int
	FinishedAt time.Time
}

// InjuryRecord is one injury as stored. Seq is the player's match count
// (including the match the injury happened in).
type InjuryRecord struct {
	MatchID   string     `json:"match_id"`
	PlayerID  string     `json:"player_id"`
	Team      sim.Team   `json:"team"`
	Injury    sim.Injury `json:"injury"`
	Seq       int        `json:"seq"`
	Remaining int        `json:"remaining"`
}

// XPAward is one experience grant.
type XPAward struct {
	MatchID  string     `json:"match_id"`
	PlayerID string     `json:"player_id"`
	Action   sim.Action `json:"action"`
	Count    int        `json:"count"` // prior uses of Action in the match
	XP       float64    `json:"xp"`
}

// Profile aggregates everything the ledger knows about a player.
type Profile struct {
	PlayerID      string         `json:"player_id"`
	TotalXP       float64        `json:"total_xp"`
	MatchesPlayed int            `json:"matches_played"`
	Injuries      []InjuryRecord `json:"injuries"`
}

// Sidelined reports whether any injury still has matches remaining.
func (p Profile) Sidelined() bool {
	for _, inj := range p.Injuries {
		if inj.Remaining > 0 {
			return true
		}
	}
	return false
}

// Store persists match results, injuries and XP awards in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS match_results (
			match_id    TEXT PRIMARY KEY,
			preset      TEXT,
			seed        INTEGER NOT NULL,
			ticks       INTEGER NOT NULL,
			home_score  INTEGER NOT NULL,
			away_score  INTEGER NOT NULL,
			pops        INTEGER NOT NULL DEFAULT 0,
			finished_at TEXT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS injuries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id    TEXT    NOT NULL,
			player_id   TEXT    NOT NULL,
			team        TEXT    NOT NULL,
			body_part   TEXT    NOT NULL,
			type        TEXT    NOT NULL,
			matches_out INTEGER NOT NULL,
			seq         INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS xp_awards (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ts         TEXT    NOT NULL,
			match_id   TEXT    NOT NULL,
			player_id  TEXT    NOT NULL,
			action     TEXT    NOT NULL,
			count      INTEGER NOT NULL,
			xp         REAL    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inj_player ON injuries(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_player_action ON xp_awards(player_id, action)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_match_player ON xp_awards(match_id, player_id, action)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	var size int64
	row := db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`)
	if err := row.Scan(&size); err != nil {
		db.Close()
		return nil, fmt.Errorf("read db size: %w", err)
	}

	var matches int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM match_results`).Scan(&matches); err != nil {
		db.Close()
		return nil, fmt.Errorf("read match count: %w", err)
	}

	telemetry.Plainf("progression store: opened %s  size=%s  matches=%s",
		path, humanize.Bytes(uint64(size)), humanize.Comma(matches))

	return &Store{db: db}, nil
}

func (s *Store) InsertResult(r MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO match_results (
			match_id, preset, seed, ticks, home_score, away_score, pops, finished_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		r.MatchID, r.Preset, r.Seed, r.Ticks, r.HomeScore, r.AwayScore, r.Pops,
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}

func (s *Store) InsertInjury(rec InjuryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO injuries (match_id, player_id, team, body_part, type, matches_out, seq)
		 VALUES (?,?,?,?,?,?,?)`,
		rec.MatchID, rec.PlayerID, string(rec.Team),
		string(rec.Injury.BodyPart), string(rec.Injury.Type), rec.Injury.MatchesOut, rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("insert injury: %w", err)
	}
	return nil
}

// InsertXP writes an award. The caller is responsible for having read
// the count it was computed from under the same lock (see Ledger).
func (s *Store) InsertXP(a XPAward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertXPLocked(a)
}

func (s *Store) insertXPLocked(a XPAward) error {
	_, err := s.db.Exec(
		`INSERT INTO xp_awards (ts, match_id, player_id, action, count, xp) VALUES (?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339Nano), a.MatchID, a.PlayerID, string(a.Action), a.Count, a.XP,
	)
	if err != nil {
		return fmt.Errorf("insert xp award: %w", err)
	}
	return nil
}

// ActionCount returns how many times playerID has been awarded action in
// matchID so far.
func (s *Store) ActionCount(matchID, playerID string, action sim.Action) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionCountLocked(matchID, playerID, action)
}

func (s *Store) actionCountLocked(matchID, playerID string, action sim.Action) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM xp_awards WHERE match_id = ? AND player_id = ? AND action = ?`,
		matchID, playerID, string(action),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s for %s: %w", action, playerID, err)
	}
	return n, nil
}

// MatchesPlayed counts participation awards across all matches.
func (s *Store) MatchesPlayed(playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchesPlayedLocked(playerID)
}

func (s *Store) matchesPlayedLocked(playerID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM xp_awards WHERE player_id = ? AND action = ?`,
		playerID, string(sim.ActionParticipation),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count matches for %s: %w", playerID, err)
	}
	return n, nil
}

// Result loads one match result.
func (s *Store) Result(matchID string) (MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r MatchResult
	var finished string
	err := s.db.QueryRow(
		`SELECT match_id, preset, seed, ticks, home_score, away_score, pops, finished_at
		 FROM match_results WHERE match_id = ?`, matchID,
	).Scan(&r.MatchID, &r.Preset, &r.Seed, &r.Ticks, &r.HomeScore, &r.AwayScore, &r.Pops, &finished)
	if err != nil {
		return MatchResult{}, fmt.Errorf("load result %s: %w", matchID, err)
	}
	r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
	return r, nil
}

// PlayerProfile aggregates XP, matches played, and injuries for a player.
func (s *Store) PlayerProfile(playerID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Profile{PlayerID: playerID, Injuries: []InjuryRecord{}}

	if err := s.db.QueryRow(
		`SELECT COALESCE(SUM(xp), 0) FROM xp_awards WHERE player_id = ?`, playerID,
	).Scan(&p.TotalXP); err != nil {
		return Profile{}, fmt.Errorf("sum xp for %s: %w", playerID, err)
	}

	played, err := s.matchesPlayedLocked(playerID)
	if err != nil {
		return Profile{}, err
	}
	p.MatchesPlayed = played

	rows, err := s.db.Query(
		`SELECT match_id, team, body_part, type, matches_out, seq
		 FROM injuries WHERE player_id = ? ORDER BY id DESC LIMIT 20`, playerID,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("load injuries for %s: %w", playerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := InjuryRecord{PlayerID: playerID}
		var team, part, typ string
		if err := rows.Scan(&rec.MatchID, &team, &part, &typ, &rec.Injury.MatchesOut, &rec.Seq); err != nil {
			return Profile{}, fmt.Errorf("scan injury: %w", err)
		}
		rec.Team = sim.Team(team)
		rec.Injury.BodyPart = sim.BodyPart(part)
		rec.Injury.Type = sim.InjuryType(typ)
		rec.Remaining = max(0, rec.Injury.MatchesOut-(played-rec.Seq))
		p.Injuries = append(p.Injuries, rec)
	}
	if err := rows.Err(); err != nil {
		return Profile{}, fmt.Errorf("iterate injuries: %w", err)
	}
	return p, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
