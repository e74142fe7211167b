package srv

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"gopkg.in/yaml.v3"
)

// Interpreter algorithms.
const (
	Gibbs                = "gibbs"
	HillClimb            = "hill_climb"
	MultiChainsGibbs     = "multi_chains_gibbs"
	MultiTrialsHillClimb = "multi_trials_hill_climb"
)

var ErrInvalidConfig = errors.New("srv: invalid config")

// Config contains what an Engine needs to load a model and interpret
// documents, and where the HTTP server listens.
type Config struct {
	// ModelDir contains lda.hyperparams, lda.word_stats and
	// lda.global_stats.  VocabFile defaults to ModelDir/lda.vocab.
	ModelDir  string `json:"model_dir" yaml:"model_dir"`
	VocabFile string `json:"vocab_file,omitempty" yaml:"vocab_file,omitempty"`

	// Addr is the listening address, e.g., ":6061".
	Addr string `json:"addr" yaml:"addr"`

	// CacheMB bounds the memory of smoothed P(w|t) vectors.
	CacheMB int `json:"cache_mb" yaml:"cache_mb"`

	// Algorithm is one of Gibbs, HillClimb, MultiChainsGibbs and
	// MultiTrialsHillClimb.  NumRuns is the number of chains or
	// trials of the latter two.
	Algorithm        string `json:"algorithm" yaml:"algorithm"`
	NumRuns          int    `json:"num_runs" yaml:"num_runs"`
	TotalIterations  int    `json:"total_iterations" yaml:"total_iterations"`
	BurnInIterations int    `json:"burn_in_iterations" yaml:"burn_in_iterations"`

	// Explainer options.
	MaxTopicWords int `json:"max_topic_words" yaml:"max_topic_words"`
	TopicTopK     int `json:"topic_top_k" yaml:"topic_top_k"`
	WordTopK      int `json:"word_top_k" yaml:"word_top_k"`

	// MaxWordsPerTopic limits the topic descriptions of the Web page.
	MaxWordsPerTopic int `json:"max_words_per_topic" yaml:"max_words_per_topic"`

	// MaxDocumentLength bounds the number of words of a request, with
	// term frequencies expanded.
	MaxDocumentLength int `json:"max_document_length" yaml:"max_document_length"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:             ":6061",
		CacheMB:          5 * 1024,
		Algorithm:        MultiChainsGibbs,
		NumRuns:          5,
		TotalIterations:  15,
		BurnInIterations: 10,
		MaxTopicWords:    20,
		TopicTopK:        10,
		WordTopK:         10,
		MaxWordsPerTopic: 50,

		MaxDocumentLength: 100000,
	}
}

// Extensions of compressed vocabularies looked up in ModelDir.
var vocabExts = []string{".gz", ".zst"}

// VocabPath returns VocabFile, or the vocabulary in ModelDir.  If
// ModelDir has no plain lda.vocab but a compressed one, the latter is
// returned.
func (c *Config) VocabPath() string {
	if len(c.VocabFile) > 0 {
		return c.VocabFile
	}
	fn := filepath.Join(c.ModelDir, gibbs.VocabFilename)
	if _, e := os.Stat(fn); e == nil {
		return fn
	}
	for _, ext := range vocabExts {
		if _, e := os.Stat(fn + ext); e == nil {
			return fn + ext
		}
	}
	return fn
}

func (c *Config) Validate() error {
	var msg []string
	if len(c.ModelDir) == 0 {
		msg = append(msg, "ModelDir must be specified")
	}
	if c.CacheMB < 0 {
		msg = append(msg, fmt.Sprintf("CacheMB (%d) < 0", c.CacheMB))
	}
	if c.MaxDocumentLength <= 0 {
		msg = append(msg, fmt.Sprintf("MaxDocumentLength (%d) <= 0", c.MaxDocumentLength))
	}
	if c.TotalIterations <= 0 {
		msg = append(msg, fmt.Sprintf("TotalIterations (%d) <= 0", c.TotalIterations))
	}

	switch c.Algorithm {
	case Gibbs, MultiChainsGibbs:
		if c.BurnInIterations <= 0 || c.BurnInIterations >= c.TotalIterations {
			msg = append(msg, fmt.Sprintf("need 0 < BurnInIterations (%d) < TotalIterations (%d)",
				c.BurnInIterations, c.TotalIterations))
		}
	case HillClimb, MultiTrialsHillClimb:
	default:
		msg = append(msg, fmt.Sprintf("unknown Algorithm %q", c.Algorithm))
	}
	if (c.Algorithm == MultiChainsGibbs || c.Algorithm == MultiTrialsHillClimb) &&
		c.NumRuns <= 0 {
		msg = append(msg, fmt.Sprintf("NumRuns (%d) <= 0", c.NumRuns))
	}

	if len(msg) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msg, "; "))
	}
	return nil
}

// Encode returns the JSON-encoded Config, which can be used as the
// value of command line flag -config.
func (c *Config) Encode() (string, error) {
	var buf bytes.Buffer
	if e := json.NewEncoder(&buf).Encode(c); e != nil {
		return "", fmt.Errorf("JSON encoding failed: %w", e)
	}
	return buf.String(), nil
}

// String is required by interface flag.Value.
func (c *Config) String() string {
	if b, e := json.MarshalIndent(c, " ", "  "); e == nil {
		return string(b)
	}
	return ""
}

// Set is required by interface flag.Value.  It decodes a JSON encoded
// Config, or loads a config file if value is not a JSON object.
// Fields absent from the input keep their values.
func (c *Config) Set(value string) error {
	if !strings.HasPrefix(strings.TrimSpace(value), "{") {
		cfg, e := LoadConfig(value)
		if e != nil {
			return e
		}
		*c = *cfg
		return nil
	}
	if e := json.NewDecoder(strings.NewReader(value)).Decode(c); e != nil {
		return fmt.Errorf("Error decoding JSON: %w", e)
	}
	return nil
}

// RegisterAsFlag registers flag -config on fs, which accepts a JSON
// encoded Config or the name of a config file.  It must be called
// before fs.Parse.
func (c *Config) RegisterAsFlag(fs *flag.FlagSet) {
	fs.Var(c, "config", "JSON encoded configuration, or a JSON/YAML config file")
}

// LoadConfig decodes a YAML file if filename ends with .yaml or .yml,
// or a JSON file otherwise, on top of DefaultConfig, and validates it.
func LoadConfig(filename string) (*Config, error) {
	b, e := os.ReadFile(filename)
	if e != nil {
		return nil, fmt.Errorf("Cannot open config file %s: %w", filename, e)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if e := yaml.Unmarshal(b, cfg); e != nil {
			return nil, fmt.Errorf("Parse YAML config file: %w", e)
		}
	default:
		if e := json.Unmarshal(b, cfg); e != nil {
			return nil, fmt.Errorf("Parse JSON config file: %w", e)
		}
	}

	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	return cfg, nil
}
