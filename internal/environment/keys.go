package environment

// Core keys.
const (
	ConfigFile          = "Core.ConfigFile"
	LogDir              = "Core.LogDir"
	LogFileName         = "Core.LogFileName"
	LogFileHandle       = "Core.LogFileHandle"
	LogFileNamePrefix   = "Core.LogFileNamePrefix"
	LogRemoveAtExit     = "Core.LogRemoveAtExit"
	LogFilterKeys       = "Core.LogFilterKeys"
	LogVerbose          = "Core.LogVerbose"
	MainTransaction     = "Core.MainTransaction"
	ModifiedFiles       = "Core.ModifiedFiles"
	ServicesProvider    = "Core.ServicesProvider"
	SessionID           = "Core.SessionID"
	Error               = "Core.Error"
	Aborted             = "Core.Aborted"
	ExecutablePath      = "Core.ExecutablePath"
	DefaultLogPrefix    = "installkit"
	DefaultLogDirectory = ""
)

// Dialog keys.
const (
	DialogDialect  = "Dialog.Dialect"
	DialogBoundary = "Dialog.Boundary"

	DialectHuman   = "human"
	DialectMachine = "machine"
)

// Network keys.
const (
	SSHEnable = "Net.SSHEnable"
	SSHKey    = "Net.SSHKey"
	SSHUser   = "Net.SSHUser"
)

// Process environment variables consulted before the log file is opened.
const (
	SystemLogDir  = "INSTALLKIT_LOG_DIR"
	SystemLogFile = "INSTALLKIT_LOG_FILE"
)
