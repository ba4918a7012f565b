package derive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/draymottishaw/college-assisted-explorer/internal/ingest/pbp"
	"github.com/draymottishaw/college-assisted-explorer/internal/ingest/roster"
)

// Dataset names.
const (
	DatasetCareer  = "career"
	DatasetCurrent = "current"
	DatasetAll     = "all"
)

// Manifest lists every input the derivation can use and how each dataset
// combines them. Relative paths are resolved against DataDir.
type Manifest struct {
	DataDir  string                   `yaml:"data_dir"`
	Seasons  SeasonsConfig            `yaml:"seasons"`
	Sources  map[string]SourceConfig  `yaml:"sources"`
	Datasets map[string]DatasetConfig `yaml:"datasets"`
}

// SeasonsConfig locates the yearly shot exports.
type SeasonsConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
	First   int    `yaml:"first"`
	Last    int    `yaml:"last"`
}

// SourceConfig describes one CSV lookup table.
type SourceConfig struct {
	Path    string         `yaml:"path"`
	Columns roster.Columns `yaml:"columns"`
	// StandardizeRoles reduces the role column to G/F/C.
	StandardizeRoles bool `yaml:"standardize_roles"`
}

// DatasetConfig describes one derived output.
type DatasetConfig struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
	// Include names the source whose players form the dataset. The source is
	// required; every other source is optional.
	Include   string   `yaml:"include"`
	Roles     []string `yaml:"roles"`
	Years     []string `yaml:"years"`
	Heights   []string `yaml:"heights"`
	Positions string   `yaml:"positions"`
	Output    string   `yaml:"output"`
}

// DefaultManifest describes the standard temp_data layout.
func DefaultManifest() *Manifest {
	return &Manifest{
		DataDir: "temp_data",
		Seasons: SeasonsConfig{
			Pattern: pbp.DefaultPattern,
			First:   2010,
			Last:    2026,
		},
		Sources: map[string]SourceConfig{
			"stats_2026": {
				Path:    "2026_stats.csv",
				Columns: roster.Columns{Name: "Player", Role: "Role", Year: "YR", Height: "Height"},
			},
			"nba_players": {
				Path:    "nba_players.csv",
				Columns: roster.Columns{Name: "Player", Role: "Role", Year: "YR"},
			},
			"career_drafted": {
				Path:    "career_drafted.csv",
				Columns: roster.Columns{Name: "Player", Role: "Role", Year: "YR"},
			},
			"bart": {
				Path:    "Bart_Core_Positions.csv",
				Columns: roster.Columns{Name: "Player", Role: "Role", Year: "YYR"},
			},
			"bart_positions": {
				Path:             "Bart_Core_Positions.csv",
				Columns:          roster.Columns{Name: "Player", Role: "Role", Year: "YYR"},
				StandardizeRoles: true,
			},
			"combine": {
				Path:    "nba_combine_data_clean.csv",
				Columns: roster.Columns{Name: "PLAYER_NAME", Height: "HEIGHT_WO_SHOES"},
			},
		},
		Datasets: map[string]DatasetConfig{
			DatasetCareer: {
				Include: "nba_players",
				Roles:   []string{"stats_2026", "nba_players", "career_drafted", "bart"},
				Years:   []string{"stats_2026", "nba_players", "career_drafted", "bart"},
				Heights: []string{"combine", "stats_2026"},
				Output:  "nba_complete_assisted.csv",
			},
			DatasetCurrent: {
				First:   2026,
				Last:    2026,
				Include: "stats_2026",
				Roles:   []string{"stats_2026", "bart"},
				Years:   []string{"stats_2026", "bart"},
				Heights: []string{"stats_2026", "combine"},
				Output:  "2026_current_players.csv",
			},
			DatasetAll: {
				Roles:     []string{"bart_positions", "stats_2026", "career_drafted"},
				Years:     []string{"bart", "stats_2026", "career_drafted"},
				Heights:   []string{"stats_2026", "combine"},
				Positions: "bart",
				Output:    "all_assisted.csv",
			},
		},
	}
}

// LoadManifest reads a YAML manifest over the defaults. Environment variables
// in the file are expanded. An empty path or a missing file yields the
// defaults.
func LoadManifest(path string) (*Manifest, error) {
	m := DefaultManifest()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that every dataset refers to known sources.
func (m *Manifest) Validate() error {
	for name, ds := range m.Datasets {
		for _, src := range ds.sources() {
			if _, ok := m.Sources[src]; !ok {
				return fmt.Errorf("dataset %s: unknown source %q", name, src)
			}
		}
	}
	return nil
}

// DatasetNames returns the configured dataset names in sorted order.
func (m *Manifest) DatasetNames() []string {
	names := make([]string, 0, len(m.Datasets))
	for name := range m.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SourcePath resolves a source's file path.
func (m *Manifest) SourcePath(name string) string {
	return m.resolve(m.Sources[name].Path)
}

// SeasonDir resolves the directory holding the season exports.
func (m *Manifest) SeasonDir() string {
	if m.Seasons.Dir == "" {
		return m.DataDir
	}
	return m.resolve(m.Seasons.Dir)
}

// OutputPath resolves a dataset's output file, relative to dir when given.
func (m *Manifest) OutputPath(dir, dataset string) string {
	out := m.Datasets[dataset].Output
	if out == "" {
		out = dataset + ".csv"
	}
	if filepath.IsAbs(out) {
		return out
	}
	if dir == "" {
		dir = m.DataDir
	}
	return filepath.Join(dir, out)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.DataDir, p)
}

// sources lists every source the dataset reads, without duplicates.
func (ds DatasetConfig) sources() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(ds.Include)
	add(ds.Roles...)
	add(ds.Years...)
	add(ds.Heights...)
	add(ds.Positions)
	return out
}
