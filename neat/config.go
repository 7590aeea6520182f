package neat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Genome     GenomeConfig
	Population PopulationConfig
	Species    SpeciesConfig
	Mutation   MutationConfig
	Mate       MateConfig
}

// GenomeConfig holds parameters specific to the structure of genomes.
type GenomeConfig struct {
	NumInputs   int     // genome.input-nodes
	NumOutputs  int     // genome.output-nodes
	WeightMin   float64 // genome.weight-min, default -1
	WeightMax   float64 // genome.weight-max, default 1
	Activation  string  // genome.activation, default "sigmoid"
	Aggregation string  // genome.aggregation, default "sum"
}

// Weights returns the range new connection weights are drawn from.
func (gc GenomeConfig) Weights() WeightRange {
	return WeightRange{Min: gc.WeightMin, Max: gc.WeightMax}
}

// PopulationConfig holds parameters of the generation loop.
type PopulationConfig struct {
	Size                int     // population.initial-size
	FitnessThreshold    float64 // population.fitness-threshold
	HasFitnessThreshold bool    // false: Run never stops early
	Seed                int64   // population.seed
	HasSeed             bool    // false: the random source is time-seeded
	Workers             int     // population.workers, default 1
}

// SpeciesConfig holds parameters related to speciation and stagnation.
type SpeciesConfig struct {
	StaleThreshold         int     // species.stale-threshold
	Elitism                int     // species.elitism, default 0
	KeepRepresentative     bool    // species.keep-representative, default false
	ExcessWeighting        float64 // species.compatibility.excess-weighting
	DisjointWeighting      float64 // species.compatibility.disjoint-weighting
	WeightWeighting        float64 // species.compatibility.weight-weighting
	CompatibilityThreshold float64 // species.compatibility.threshold
}

// MutationConfig holds the trigger probability of each mutation.
type MutationConfig struct {
	ChangeWeightsChance float64 // mutation.change-weights-chance
	AddConnectionChance float64 // mutation.add-connection-chance
	AddNodeChance       float64 // mutation.add-node-chance
}

// MateConfig holds the mate strategy weights and the crossover parameters.
type MateConfig struct {
	CloneChance             float64 // mate.clone-chance
	CrossoverChance         float64 // mate.crossover-chance
	DisableConnectionChance float64 // mate.crossover.disable-connection-chance
}

// LoadConfig loads configuration parameters from an INI or YAML file.
// INI keys may be written flat (genome.input-nodes = 2) or grouped under a section
// header ([genome] then input-nodes = 2). YAML nesting is flattened the same way.
func LoadConfig(filePath string) (*Config, error) {
	var (
		flat *ini.Section
		err  error
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		flat, err = loadYAML(filePath)
	default:
		flat, err = loadINI(filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return parseConfig(flat)
}

// LoadConfigFromMap builds a configuration from flat key/value pairs.
func LoadConfigFromMap(values map[string]string) (*Config, error) {
	flat := ini.Empty().Section(ini.DefaultSection)
	if err := fillSection(flat, values); err != nil {
		return nil, err
	}
	return parseConfig(flat)
}

func loadINI(filePath string) (*ini.Section, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true,
	}, filePath)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, sec := range cfg.Sections() {
		prefix := ""
		if sec.Name() != ini.DefaultSection {
			prefix = sec.Name() + "."
		}
		for _, key := range sec.Keys() {
			values[prefix+key.Name()] = key.Value()
		}
	}

	flat := ini.Empty().Section(ini.DefaultSection)
	if err := fillSection(flat, values); err != nil {
		return nil, err
	}
	return flat, nil
}

func loadYAML(filePath string) (*ini.Section, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	values := make(map[string]string)
	flattenYAML("", tree, values)

	flat := ini.Empty().Section(ini.DefaultSection)
	if err := fillSection(flat, values); err != nil {
		return nil, err
	}
	return flat, nil
}

// flattenYAML joins nested mapping keys with '.'.
func flattenYAML(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]any:
			flattenYAML(name, child, out)
		case nil:
			out[name] = ""
		default:
			out[name] = fmt.Sprint(child)
		}
	}
}

func fillSection(sec *ini.Section, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := sec.NewKey(name, cleanIniString(values[name])); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrConfig, name, err)
		}
	}
	return nil
}

// keyReader collects every missing or malformed key instead of stopping at the first.
type keyReader struct {
	sec  *ini.Section
	errs []error
}

func (r *keyReader) fail(name string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%w: key %q: %v", ErrConfig, name, err))
}

func (r *keyReader) key(name string, required bool) *ini.Key {
	if !r.sec.HasKey(name) {
		if required {
			r.fail(name, errors.New("missing"))
		}
		return nil
	}
	return r.sec.Key(name)
}

func (r *keyReader) intValue(name string, required bool, def int) int {
	k := r.key(name, required)
	if k == nil {
		return def
	}
	v, err := k.Int()
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *keyReader) int64Value(name string) (int64, bool) {
	k := r.key(name, false)
	if k == nil {
		return 0, false
	}
	v, err := k.Int64()
	if err != nil {
		r.fail(name, err)
		return 0, false
	}
	return v, true
}

func (r *keyReader) floatValue(name string, required bool, def float64) float64 {
	k := r.key(name, required)
	if k == nil {
		return def
	}
	v, err := k.Float64()
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *keyReader) boolValue(name string) bool {
	k := r.key(name, false)
	if k == nil {
		return false
	}
	v, err := k.Bool()
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *keyReader) stringValue(name, def string) string {
	k := r.key(name, false)
	if k == nil || k.String() == "" {
		return def
	}
	return k.String()
}

func parseConfig(sec *ini.Section) (*Config, error) {
	r := &keyReader{sec: sec}
	config := &Config{}

	config.Genome = GenomeConfig{
		NumInputs:   r.intValue("genome.input-nodes", true, 0),
		NumOutputs:  r.intValue("genome.output-nodes", true, 0),
		WeightMin:   r.floatValue("genome.weight-min", false, DefaultWeightRange.Min),
		WeightMax:   r.floatValue("genome.weight-max", false, DefaultWeightRange.Max),
		Activation:  r.stringValue("genome.activation", "sigmoid"),
		Aggregation: r.stringValue("genome.aggregation", "sum"),
	}

	config.Population.Size = r.intValue("population.initial-size", true, 0)
	if sec.HasKey("population.fitness-threshold") {
		config.Population.FitnessThreshold = r.floatValue("population.fitness-threshold", true, 0)
		config.Population.HasFitnessThreshold = true
	}
	config.Population.Seed, config.Population.HasSeed = r.int64Value("population.seed")
	config.Population.Workers = r.intValue("population.workers", false, 1)

	config.Species = SpeciesConfig{
		StaleThreshold:         r.intValue("species.stale-threshold", true, 0),
		Elitism:                r.intValue("species.elitism", false, 0),
		KeepRepresentative:     r.boolValue("species.keep-representative"),
		ExcessWeighting:        r.floatValue("species.compatibility.excess-weighting", true, 0),
		DisjointWeighting:      r.floatValue("species.compatibility.disjoint-weighting", true, 0),
		WeightWeighting:        r.floatValue("species.compatibility.weight-weighting", true, 0),
		CompatibilityThreshold: r.floatValue("species.compatibility.threshold", true, 0),
	}

	config.Mutation = MutationConfig{
		ChangeWeightsChance: r.floatValue("mutation.change-weights-chance", true, 0),
		AddConnectionChance: r.floatValue("mutation.add-connection-chance", true, 0),
		AddNodeChance:       r.floatValue("mutation.add-node-chance", true, 0),
	}

	config.Mate = MateConfig{
		CloneChance:             r.floatValue("mate.clone-chance", true, 0),
		CrossoverChance:         r.floatValue("mate.crossover-chance", true, 0),
		DisableConnectionChance: r.floatValue("mate.crossover.disable-connection-chance", true, 0),
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges. Every violation is reported.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...))
		}
	}

	check(c.Genome.NumInputs > 0, "genome.input-nodes must be positive")
	check(c.Genome.NumOutputs > 0, "genome.output-nodes must be positive")
	check(c.Genome.WeightMax > c.Genome.WeightMin, "genome.weight-max must be greater than genome.weight-min")
	_, err := GetActivation(c.Genome.Activation)
	check(err == nil, "genome.activation: %v", err)
	_, err = GetAggregation(c.Genome.Aggregation)
	check(err == nil, "genome.aggregation: %v", err)

	check(c.Population.Size > 0, "population.initial-size must be positive")
	check(c.Population.Workers > 0, "population.workers must be positive")

	check(c.Species.StaleThreshold > 0, "species.stale-threshold must be positive")
	check(c.Species.Elitism >= 0, "species.elitism cannot be negative")
	check(c.Species.ExcessWeighting >= 0, "species.compatibility.excess-weighting cannot be negative")
	check(c.Species.DisjointWeighting >= 0, "species.compatibility.disjoint-weighting cannot be negative")
	check(c.Species.WeightWeighting >= 0, "species.compatibility.weight-weighting cannot be negative")
	check(c.Species.CompatibilityThreshold >= 0, "species.compatibility.threshold cannot be negative")

	for name, p := range map[string]float64{
		"mutation.change-weights-chance":          c.Mutation.ChangeWeightsChance,
		"mutation.add-connection-chance":          c.Mutation.AddConnectionChance,
		"mutation.add-node-chance":                c.Mutation.AddNodeChance,
		"mate.clone-chance":                       c.Mate.CloneChance,
		"mate.crossover-chance":                   c.Mate.CrossoverChance,
		"mate.crossover.disable-connection-chance": c.Mate.DisableConnectionChance,
	} {
		check(p >= 0 && p <= 1, "%s must be between 0 and 1", name)
	}
	check(c.Mate.CloneChance+c.Mate.CrossoverChance > 0, "mate.clone-chance and mate.crossover-chance cannot both be zero")

	return errors.Join(errs...)
}

// Mutations builds the mutation pipeline in its fixed order: weights, connection, node.
func (c *Config) Mutations() MutationPipeline {
	weights := c.Genome.Weights()
	return MutationPipeline{
		{Mutation: ConnectionWeightMutation{Weights: weights}, Chance: c.Mutation.ChangeWeightsChance},
		{Mutation: AddConnectionMutation{Weights: weights}, Chance: c.Mutation.AddConnectionChance},
		{Mutation: AddNodeMutation{}, Chance: c.Mutation.AddNodeChance},
	}
}

// Mates builds the weighted mate strategies: clone first, then crossover.
func (c *Config) Mates() []WeightedMate {
	return []WeightedMate{
		{Mate: CloneMate{}, Weight: c.Mate.CloneChance},
		{Mate: CrossoverMate{DisableChance: c.Mate.DisableConnectionChance}, Weight: c.Mate.CrossoverChance},
	}
}

// Classifier builds the compatibility distance classifier.
func (c *Config) Classifier() DistanceClassifier {
	return DistanceClassifier{
		ExcessWeighting:   c.Species.ExcessWeighting,
		DisjointWeighting: c.Species.DisjointWeighting,
		WeightWeighting:   c.Species.WeightWeighting,
		Threshold:         c.Species.CompatibilityThreshold,
	}
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
