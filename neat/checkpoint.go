package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// PopulationSaveData is a helper struct to hold only the parts of Population needed for saving.
// We don't save the Config, as it's reloaded from the original file, nor the random
// source, which is reseeded on load.
type PopulationSaveData struct {
	RunID          uuid.UUID
	Generation     int
	Genomes        []GenomeRecord
	Species        []SpeciesSaveData
	SpeciesIndexer int
	NextGenomeKey  int
	Ancestors      map[int][]int
	BestGenome     *GenomeRecord
}

// SpeciesSaveData is the persisted form of a Species. Members are the culled breeders
// of the last generation. With species.keep-representative set, one of them becomes the
// representative on the next Speciate.
type SpeciesSaveData struct {
	Key            int
	Created        int
	HighestFitness float64
	Staleness      int
	HasBest        bool
	Members        []GenomeRecord
	Representative *GenomeRecord
}

// SaveCheckpoint saves the current state of the Population to a file.
// Uses gzip compression for smaller file size.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(p.saveData()); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}
	return file.Close()
}

func (p *Population) saveData() PopulationSaveData {
	data := PopulationSaveData{
		RunID:          p.RunID,
		Generation:     p.Generation,
		Genomes:        records(p.Genomes),
		SpeciesIndexer: p.SpeciesSet.Indexer,
		NextGenomeKey:  p.Reproduction.NextGenomeKey,
		Ancestors:      p.Reproduction.Ancestors,
	}
	for _, s := range p.SpeciesSet.Species {
		sd := SpeciesSaveData{
			Key:            s.Key,
			Created:        s.Created,
			HighestFitness: s.HighestFitness,
			Staleness:      s.Staleness,
			HasBest:        s.hasBest,
			Members:        records(s.members),
		}
		if s.representative != nil {
			rec := s.representative.Record()
			sd.Representative = &rec
		}
		data.Species = append(data.Species, sd)
	}
	if p.BestGenome != nil {
		rec := p.BestGenome.Record()
		data.BestGenome = &rec
	}
	return data
}

func records(genomes []*Genome) []GenomeRecord {
	out := make([]GenomeRecord, len(genomes))
	for i, g := range genomes {
		out[i] = g.Record()
	}
	return out
}

// LoadCheckpoint loads a Population state from a checkpoint file.
// It requires the original configuration file path to reconstruct the Config object.
func LoadCheckpoint(checkpointPath string, configPath string, opts ...Option) (*Population, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s' for checkpoint: %w", configPath, err)
	}
	return LoadCheckpointWithConfig(checkpointPath, config, opts...)
}

// LoadCheckpointWithConfig loads a Population state using an already loaded Config.
// The process-wide id counters are raised above every id found in the checkpoint.
func LoadCheckpointWithConfig(checkpointPath string, config *Config, opts ...Option) (*Population, error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var saveData PopulationSaveData
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	p := newPopulationShell(config, opts)
	if err := p.restore(saveData); err != nil {
		return nil, fmt.Errorf("failed to restore checkpoint '%s': %w", checkpointPath, err)
	}
	return p, nil
}

func (p *Population) restore(data PopulationSaveData) error {
	var restored []*Genome
	fromRecords := func(recs []GenomeRecord) ([]*Genome, error) {
		out := make([]*Genome, len(recs))
		for i, rec := range recs {
			g, err := GenomeFromRecord(rec)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		restored = append(restored, out...)
		return out, nil
	}

	genomes, err := fromRecords(data.Genomes)
	if err != nil {
		return err
	}

	ss := &SpeciesSet{Indexer: data.SpeciesIndexer, KeepRepresentatives: p.Config.Species.KeepRepresentative}
	for _, sd := range data.Species {
		members, err := fromRecords(sd.Members)
		if err != nil {
			return err
		}
		s := &Species{
			Key:            sd.Key,
			Created:        sd.Created,
			HighestFitness: sd.HighestFitness,
			Staleness:      sd.Staleness,
			hasBest:        sd.HasBest,
			members:        members,
		}
		if sd.Representative != nil {
			reps, err := fromRecords([]GenomeRecord{*sd.Representative})
			if err != nil {
				return err
			}
			s.representative = reps[0]
		}
		ss.Species = append(ss.Species, s)
	}

	if data.BestGenome != nil {
		best, err := fromRecords([]GenomeRecord{*data.BestGenome})
		if err != nil {
			return err
		}
		p.BestGenome = best[0]
	}

	maxNode, maxInnov := 0, 0
	for _, g := range restored {
		maxNode = max(maxNode, g.maxNodeID())
		maxInnov = max(maxInnov, g.MaxInnovation())
	}
	ReserveIDs(maxNode, maxInnov)

	p.RunID = data.RunID
	p.Generation = data.Generation
	p.Genomes = genomes
	p.SpeciesSet = ss
	p.Reproduction.NextGenomeKey = data.NextGenomeKey
	p.Reproduction.Ancestors = data.Ancestors
	if p.Reproduction.Ancestors == nil {
		p.Reproduction.Ancestors = make(map[int][]int)
	}
	return nil
}
