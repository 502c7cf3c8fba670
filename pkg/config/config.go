// Package config loads grapplegraph's TOML configuration file.
//
// The file is looked up at the path given with --config, else at
// $XDG_CONFIG_HOME/grapplegraph/config.toml (~/.config when unset). A
// missing default file means defaults; a missing explicit file is an
// error. Unknown keys are rejected.
//
//	[match]
//	tolerance = 0.05
//	metric = "euclidean"
//
//	[graph]
//	index = "head-distance"
//	workers = 4
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pipeline"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

const appName = "grapplegraph"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the whole configuration file.
type Config struct {
	Match  Match  `toml:"match"`
	Codec  Codec  `toml:"codec"`
	Graph  Graph  `toml:"graph"`
	Relax  Relax  `toml:"relax"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
}

type Match struct {
	Tolerance float64 `toml:"tolerance"`
	Metric    string  `toml:"metric"`
}

type Codec struct {
	Convention string `toml:"convention"`
}

type Graph struct {
	Index        string  `toml:"index"`
	Canonicalize bool    `toml:"canonicalize"`
	Workers      int     `toml:"workers"`
	Grid         float64 `toml:"grid"`
}

// Relax configures the limb relaxer. Iterations also bound the relax
// endpoint of the API; builds only relax when asked to on the command line.
type Relax struct {
	Iterations int `toml:"iterations"`
}

type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"` // file backend; empty means the XDG cache dir
	RedisAddr string `toml:"redis_addr"`
}

type Store struct {
	MongoURI string `toml:"mongo_uri"` // empty disables the store
	Database string `toml:"database"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Match:  Match{Tolerance: pipeline.DefaultTolerance, Metric: pipeline.DefaultMetric},
		Codec:  Codec{Convention: pipeline.DefaultConvention},
		Graph:  Graph{Index: pipeline.DefaultIndex, Workers: pipeline.DefaultWorkers, Grid: pipeline.DefaultGrid},
		Relax:  Relax{Iterations: 1},
		Cache:  Cache{Backend: BackendFile, RedisAddr: "localhost:6379"},
		Store:  Store{Database: appName},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration at path, or at DefaultPath when path is
// empty, on top of Default.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Read decodes and validates a configuration on top of Default.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks every value and returns an INVALID_CONFIG error for the
// first problem found.
func (c Config) Validate() error {
	invalid := func(err error, what string) error {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s", what)
	}
	if err := errs.ValidateTolerance(c.Match.Tolerance); err != nil {
		return invalid(err, "match.tolerance")
	}
	if _, err := match.ParseMetric(c.Match.Metric); err != nil {
		return invalid(err, "match.metric")
	}
	if _, err := pose.ParseConvention(c.Codec.Convention); err != nil {
		return invalid(err, "codec.convention")
	}
	if _, err := movegraph.ParseIndexKind(c.Graph.Index); err != nil {
		return invalid(err, "graph.index")
	}
	if err := errs.ValidateCount("workers", c.Graph.Workers, pipeline.MaxWorkers); err != nil {
		return invalid(err, "graph.workers")
	}
	if err := errs.ValidateGrid(c.Graph.Grid); err != nil {
		return invalid(err, "graph.grid")
	}
	if err := errs.ValidateCount("iterations", c.Relax.Iterations, pipeline.MaxRelaxIterations); err != nil {
		return invalid(err, "relax.iterations")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Store.MongoURI != "" && c.Store.Database == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "store.database is required with store.mongo_uri")
	}
	return nil
}

// PipelineOptions returns the build options the configuration selects.
// Catalog and render fields are left for the caller.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Tolerance:    c.Match.Tolerance,
		Metric:       c.Match.Metric,
		Convention:   c.Codec.Convention,
		Index:        c.Graph.Index,
		Canonicalize: c.Graph.Canonicalize,
		Grid:         c.Graph.Grid,
		Workers:      c.Graph.Workers,
	}
}
