package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every configuration environment variable.
	EnvPrefix = "CLAUDESYNC_"

	// AppDirName is the directory under XDG_CONFIG_HOME.
	AppDirName = "claudesync"

	// UserConfigFile is the file name inside AppDirName.
	UserConfigFile = "config.toml"

	// ProjectConfigFile is the optional file at the project root.
	ProjectConfigFile = ".claudesync.toml"
)

// envAliases maps short environment names (after prefix stripping and
// lowercasing) to their configuration keys.
var envAliases = map[string]string{
	"live_root":    "paths.live_root",
	"project_root": "paths.project_root",
	"format":       "output.format",
	"verbosity":    "logging.verbosity",
}

// LoadOptions select the layers merged by Load.
type LoadOptions struct {
	// UserConfigPath overrides $XDG_CONFIG_HOME/claudesync/config.toml.
	UserConfigPath string

	// ProjectRoot is searched for .claudesync.toml. Empty skips the layer.
	ProjectRoot string

	// ConfigFile is an explicit file that must exist.
	ConfigFile string

	// Overrides are flag values keyed by dotted configuration key.
	Overrides map[string]interface{}

	// SkipEnv disables the CLAUDESYNC_* layer.
	SkipEnv bool
}

// Load merges, lowest precedence first: embedded defaults, the user file,
// the project file, the explicit file, the environment and overrides.
// Missing optional files are skipped. Malformed files are CONFIG_PARSE
// errors; a missing explicit file is CONFIG_LOAD.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")
	var sources []string

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load embedded defaults")
	}

	// 2. User config
	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = UserConfigPath()
	}
	loaded, err := loadOptionalFile(k, userPath)
	if err != nil {
		return nil, err
	}
	if loaded {
		sources = append(sources, userPath)
	}

	// 3. Project config
	if opts.ProjectRoot != "" {
		projectPath := filepath.Join(opts.ProjectRoot, ProjectConfigFile)
		loaded, err := loadOptionalFile(k, projectPath)
		if err != nil {
			return nil, err
		}
		if loaded {
			sources = append(sources, projectPath)
		}
	}

	// 4. Explicit config
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", opts.ConfigFile).
				WithDetail("path", opts.ConfigFile)
		}
		if err := loadFile(k, opts.ConfigFile); err != nil {
			return nil, err
		}
		sources = append(sources, opts.ConfigFile)
	}

	// 5. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
		}
	}

	// 6. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	logger.Debug().
		Strs("sources", sources).
		Str("liveRoot", cfg.Paths.LiveRoot).
		Str("projectRoot", cfg.Paths.ProjectRoot).
		Str("format", cfg.Output.Format).
		Msg("Configuration loaded")

	return cfg, nil
}

// UserConfigPath returns the per-user configuration file location.
// XDG_CONFIG_HOME is read at call time so tests can redirect it.
func UserConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = xdg.ConfigHome
	}
	return filepath.Join(base, AppDirName, UserConfigFile)
}

// envKey turns CLAUDESYNC_PATHS_LIVE_ROOT into paths.live_root. The first
// underscore separates the section from the key; short aliases such as
// CLAUDESYNC_LIVE_ROOT are mapped explicitly.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if alias, ok := envAliases[key]; ok {
		return alias
	}
	return strings.Replace(key, "_", ".", 1)
}

func loadOptionalFile(k *koanf.Koanf, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return false, errors.Newf(errors.ErrConfigLoad, "config path %s is a directory", path).
			WithDetail("path", path)
	}
	if err := loadFile(k, path); err != nil {
		return false, err
	}
	return true, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path).
			WithDetail("path", path)
	}
	return nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfiguration, "invalid configuration")
	}
	return &cfg, nil
}
