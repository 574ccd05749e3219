package commands

import (
	"github.com/arthur-debert/claudesync/pkg/config"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/arthur-debert/claudesync/pkg/paths"
)

// Resolve loads configuration and resolves the live and mirror roots.
//
// The project config file lives under the project root, which itself may
// come from configuration. Configuration is therefore loaded once without
// the project layer, the roots are resolved, and if a project file exists
// it is merged in and the live root is resolved again. The project root is
// not re-resolved from the project file.
func Resolve(opts config.LoadOptions) (*config.Config, *paths.Paths, error) {
	logger := logging.GetLogger("commands.resolve")

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, nil, err
	}

	p, err := paths.New(paths.Options{
		LiveRoot:    cfg.Paths.LiveRoot,
		ProjectRoot: cfg.Paths.ProjectRoot,
	})
	if err != nil {
		return nil, nil, err
	}

	if opts.ProjectRoot != "" {
		return cfg, p, nil
	}

	withProject := opts
	withProject.ProjectRoot = p.ProjectRoot()
	projectCfg, err := config.Load(withProject)
	if err != nil {
		return nil, nil, err
	}
	if len(projectCfg.Sources) == len(cfg.Sources) {
		return cfg, p, nil
	}

	logger.Debug().
		Str("path", p.ProjectConfigPath()).
		Msg("Merged project configuration")

	reresolved, err := paths.New(paths.Options{
		LiveRoot:    projectCfg.Paths.LiveRoot,
		ProjectRoot: p.ProjectRoot(),
	})
	if err != nil {
		return nil, nil, err
	}
	return projectCfg, reresolved, nil
}
