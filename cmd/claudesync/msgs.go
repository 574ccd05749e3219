package claudesync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Back up and restore CLI configuration through a project mirror"
	MsgBackupShort     = "Copy the live configuration into the project mirror"
	MsgRestoreShort    = "Copy the project mirror onto the live configuration"
	MsgVersionShort    = "Print version information"
	MsgGenConfigShort  = "Print or write the default configuration file"
	MsgCompletionShort = "Generate shell completion script"

	// Error messages
	MsgErrNoCommand = "no command specified"
	MsgErrFormat    = "invalid output format: %w"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun      = "Preview changes without executing them"
	MsgFlagFormat      = "Output format: auto, term, text, json or yaml"
	MsgFlagConfig      = "Read configuration from this file as well"
	MsgFlagLiveRoot    = "Live configuration directory (default ~/.claude)"
	MsgFlagProjectRoot = "Project containing the config/ mirror (default: git root, then current directory)"
	MsgFlagWrite       = "Write the configuration file instead of printing it"
	MsgFlagForce       = "Overwrite an existing configuration file"
	MsgFlagPath        = "Where --write saves the file"
	MsgFlagEffective   = "Print the merged configuration instead of the defaults"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/backup-long.txt
	msgBackupLongRaw string
	MsgBackupLong    = strings.TrimSpace(msgBackupLongRaw)

	//go:embed msgs/backup-example.txt
	msgBackupExampleRaw string
	MsgBackupExample    = strings.TrimRight(msgBackupExampleRaw, "\n")

	//go:embed msgs/restore-long.txt
	msgRestoreLongRaw string
	MsgRestoreLong    = strings.TrimSpace(msgRestoreLongRaw)

	//go:embed msgs/restore-example.txt
	msgRestoreExampleRaw string
	MsgRestoreExample    = strings.TrimRight(msgRestoreExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
