// Package history records the progress of evolution runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baldhumanity/neatevo/neat"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// GenerationRecord is one row of the generations table.
type GenerationRecord struct {
	RunID          uuid.UUID
	Generation     int
	PopulationSize int
	NumSpecies     int
	NumRemoved     int
	BestFitness    float64
	MeanFitness    float64
	StdDevFitness  float64
	Elapsed        time.Duration
	ChampionKey    int
}

// SpeciesEvent is one row of the species_events table.
type SpeciesEvent struct {
	RunID          uuid.UUID
	Generation     int
	SpeciesKey     int
	Reason         string
	Members        int
	HighestFitness float64
	Staleness      int
}

// Store persists generation statistics, champions and species removals.
// It implements neat.Reporter; reporter callbacks use a background context.
type Store struct {
	path string

	mu      sync.RWMutex
	db      *sql.DB
	runID   uuid.UUID
	pending []error // SpeciesRemoved failures, returned by the next EndGeneration
}

var _ neat.Reporter = (*Store)(nil)

// Open opens (creating if needed) the database at path. Events reported through the
// neat.Reporter methods are recorded under runID.
func Open(ctx context.Context, path string, runID uuid.UUID) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{path: path, db: db, runID: runID}, nil
}

// Close closes the database. Further calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is closed")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			population INTEGER NOT NULL,
			species INTEGER NOT NULL,
			removed INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			stdev_fitness REAL NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			champion_key INTEGER NOT NULL,
			champion BLOB,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS species_events (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			species_key INTEGER NOT NULL,
			reason TEXT NOT NULL,
			members INTEGER NOT NULL,
			highest_fitness REAL NOT NULL,
			staleness INTEGER NOT NULL
		);
	`)
	return err
}

// RecordGeneration stores stats and the champion genome, replacing an earlier row for
// the same run and generation.
func (s *Store) RecordGeneration(ctx context.Context, stats neat.GenerationStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	var (
		payload     []byte
		championKey int
	)
	if stats.Champion != nil {
		championKey = stats.Champion.Key
		payload, err = json.Marshal(stats.Champion.Record())
		if err != nil {
			return fmt.Errorf("encode champion: %w", err)
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, population, species, removed,
			best_fitness, mean_fitness, stdev_fitness, elapsed_ns, champion_key, champion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			population = excluded.population,
			species = excluded.species,
			removed = excluded.removed,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			stdev_fitness = excluded.stdev_fitness,
			elapsed_ns = excluded.elapsed_ns,
			champion_key = excluded.champion_key,
			champion = excluded.champion
	`, stats.RunID.String(), stats.Generation, stats.PopulationSize, stats.NumSpecies, stats.NumRemoved,
		stats.BestFitness, stats.MeanFitness, stats.StdDevFitness, int64(stats.Elapsed), championKey, payload)
	return err
}

// RecordRemoval stores one species removal.
func (s *Store) RecordRemoval(ctx context.Context, event SpeciesEvent) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO species_events (run_id, generation, species_key, reason, members, highest_fitness, staleness)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, event.RunID.String(), event.Generation, event.SpeciesKey, event.Reason, event.Members,
		event.HighestFitness, event.Staleness)
	return err
}

// Generations returns every generation recorded for runID, in generation order.
func (s *Store) Generations(ctx context.Context, runID uuid.UUID) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, population, species, removed, best_fitness, mean_fitness,
			stdev_fitness, elapsed_ns, champion_key
		FROM generations WHERE run_id = ? ORDER BY generation
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		rec := GenerationRecord{RunID: runID}
		var elapsed int64
		if err := rows.Scan(&rec.Generation, &rec.PopulationSize, &rec.NumSpecies, &rec.NumRemoved,
			&rec.BestFitness, &rec.MeanFitness, &rec.StdDevFitness, &elapsed, &rec.ChampionKey); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsed)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SpeciesEvents returns every species removal recorded for runID, oldest first.
func (s *Store) SpeciesEvents(ctx context.Context, runID uuid.UUID) ([]SpeciesEvent, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, species_key, reason, members, highest_fitness, staleness
		FROM species_events WHERE run_id = ? ORDER BY generation, rowid
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SpeciesEvent
	for rows.Next() {
		ev := SpeciesEvent{RunID: runID}
		if err := rows.Scan(&ev.Generation, &ev.SpeciesKey, &ev.Reason, &ev.Members,
			&ev.HighestFitness, &ev.Staleness); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Champion returns the best genome of one recorded generation. The boolean is false
// when no such generation, or no champion, was recorded.
func (s *Store) Champion(ctx context.Context, runID uuid.UUID, generation int) (*neat.Genome, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT champion FROM generations WHERE run_id = ? AND generation = ?`,
		runID.String(), generation).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(payload) == 0 {
		return nil, false, nil
	}

	var rec neat.GenomeRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, false, fmt.Errorf("decode champion of generation %d: %w", generation, err)
	}
	g, err := neat.GenomeFromRecord(rec)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// StartGeneration implements neat.Reporter.
func (s *Store) StartGeneration(int) {}

// SpeciesRemoved implements neat.Reporter.
func (s *Store) SpeciesRemoved(generation int, sp *neat.Species, reason neat.RemovalReason) {
	err := s.RecordRemoval(context.Background(), SpeciesEvent{
		RunID:          s.runID,
		Generation:     generation,
		SpeciesKey:     sp.Key,
		Reason:         reason.String(),
		Members:        sp.Len(),
		HighestFitness: sp.HighestFitness,
		Staleness:      sp.Staleness,
	})
	if err != nil {
		s.mu.Lock()
		s.pending = append(s.pending, fmt.Errorf("record removal of species %d: %w", sp.Key, err))
		s.mu.Unlock()
	}
}

// EndGeneration implements neat.Reporter.
func (s *Store) EndGeneration(stats neat.GenerationStats) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	err := s.RecordGeneration(context.Background(), stats)
	return errors.Join(append(pending, err)...)
}
