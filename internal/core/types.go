package core

// Command is a program invocation resolved from a validated command line.
// It is run directly, never through a shell.
type Command struct {
	Cmd  string
	Args []string
	Dir  string
}

// Operation names used for logging, metrics and audit records.
const (
	OpRunCommand   = "run_command"
	OpInstall      = "install_package"
	OpUninstall    = "uninstall_package"
	OpListPackages = "list_packages"
	OpStopProcess  = "stop_process"
)
