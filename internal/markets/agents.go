package markets

import (
	"embed"
	"os"
	"path"
	"path/filepath"

	"flakelab/internal/common"
	"flakelab/pkg/errors"
)

// DefaultAgentsDir is where agent configurations are written
const DefaultAgentsDir = "snowflake_intelligence_agents"

//go:embed agents
var agentFiles embed.FS

// WriteAgents writes the agent configurations of variant into dir and
// returns the written paths
func WriteAgents(dir string, variant Variant) ([]string, error) {
	if dir == "" {
		dir = DefaultAgentsDir
	}
	if err := os.MkdirAll(dir, common.DirPermissionNormal); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFilePermission, "Failed to create agents directory").
			WithContext("dir", dir)
	}

	src := path.Join("agents", string(variant))
	entries, err := agentFiles.ReadDir(src)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "No agent configurations for variant").
			WithContext("variant", string(variant))
	}

	var written []string
	for _, entry := range entries {
		data, err := agentFiles.ReadFile(path.Join(src, entry.Name()))
		if err != nil {
			return written, errors.Wrap(err, errors.ErrCodeInternal, "Failed to read agent configuration")
		}
		target := filepath.Join(dir, entry.Name())
		if err := os.WriteFile(target, data, common.FilePermissionNormal); err != nil {
			return written, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to write agent configuration").
				WithContext("file", target)
		}
		written = append(written, target)
	}
	return written, nil
}
