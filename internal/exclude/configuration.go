package exclude

const (
	configurationAssumeYesKeyConstant = "assume_yes"
)

// CommandConfiguration captures configuration values for the exclude command.
type CommandConfiguration struct {
	AssumeYes bool `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration provides baseline configuration values for the exclude command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		AssumeYes: false,
	}
}

// DefaultConfigurationValues produces Viper defaults rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationAssumeYesKeyConstant: defaults.AssumeYes,
	}
}
