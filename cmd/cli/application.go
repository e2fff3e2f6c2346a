package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/localignore/internal/exclude"
	"github.com/temirov/localignore/internal/gitrepo"
	"github.com/temirov/localignore/internal/utils"
	pathutils "github.com/temirov/localignore/internal/utils/path"
)

const (
	configFileFlagNameConstant                = "config"
	configFileFlagUsageConstant               = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                  = "log-level"
	logLevelFlagUsageConstant                 = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant                 = "log-format"
	logFormatFlagUsageConstant                = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant            = "common"
	commonLogLevelConfigKeyConstant           = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant          = commonConfigurationKeyConstant + ".log_format"
	excludeConfigurationKeyConstant           = "exclude"
	repositoryConfigurationKeyConstant        = "repository"
	ceilingDirectoriesConfigKeyConstant       = repositoryConfigurationKeyConstant + ".ceiling_directories"
	ceilingDirectoriesEnvironmentNameConstant = "GIT_CEILING_DIRECTORIES"
	environmentPrefixConstant                 = "GITLOCALIGNORE"
	configurationNameConstant                 = "config"
	configurationTypeConstant                 = "yaml"
	userConfigurationDirectoryNameConstant    = "git-local-ignore"
	configurationInitializedMessageConstant   = "configuration initialized"
	configurationLogLevelFieldConstant        = "log_level"
	configurationLogFormatFieldConstant       = "log_format"
	configurationFileFieldConstant            = "config_file"
	configurationCeilingFieldConstant         = "ceiling_directories"
	configurationLoadErrorTemplateConstant    = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant       = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant           = "unable to flush logger: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common     ApplicationCommonConfiguration     `mapstructure:"common"`
	Exclude    exclude.CommandConfiguration       `mapstructure:"exclude"`
	Repository ApplicationRepositoryConfiguration `mapstructure:"repository"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationRepositoryConfiguration controls repository discovery.
type ApplicationRepositoryConfiguration struct {
	CeilingDirectories []string `mapstructure:"ceiling_directories"`
}

// ApplicationDependencies carries optional collaborators; zero values select production defaults.
type ApplicationDependencies struct {
	WorkingDirectoryProvider exclude.WorkingDirectoryProvider
	PrompterFactory          exclude.PrompterFactory
	VersionResolver          VersionResolver
	ConfigurationSearchPaths []string
	Input                    io.Reader
	Output                   io.Writer
	ErrorOutput              io.Writer
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	homeExpander          *pathutils.HomeExpander
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles an application using the supplied collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	searchPaths := dependencies.ConfigurationSearchPaths
	if len(searchPaths) == 0 {
		searchPaths = defaultConfigurationSearchPaths()
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.BindEnvironment(ceilingDirectoriesConfigKeyConstant, ceilingDirectoriesEnvironmentNameConstant)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		homeExpander:        pathutils.NewHomeExpander(),
		logger:              zap.NewNop(),
	}

	excludeBuilder := exclude.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() exclude.CommandConfiguration {
			return application.configuration.Exclude
		},
		LocatorProvider: func() exclude.RepositoryLocator {
			return gitrepo.NewLocator(nil, application.ceilingDirectories())
		},
		WorkingDirectoryProvider: dependencies.WorkingDirectoryProvider,
		PrompterFactory:          dependencies.PrompterFactory,
	}

	versionResolver := dependencies.VersionResolver
	if versionResolver == nil {
		versionResolver = ResolveVersion
	}

	rootCommand, _ := excludeBuilder.Build()
	rootCommand.Version = versionResolver()
	rootCommand.SetVersionTemplate(versionTemplateConstant)
	rootCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		return application.initializeConfiguration(command)
	}

	rootCommand.SetContext(context.Background())
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	if dependencies.Input != nil {
		rootCommand.SetIn(dependencies.Input)
	}
	if dependencies.Output != nil {
		rootCommand.SetOut(dependencies.Output)
	}
	if dependencies.ErrorOutput != nil {
		rootCommand.SetErr(dependencies.ErrorOutput)
	}

	application.rootCommand = rootCommand

	return application
}

// Execute runs the configured Cobra command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// ExecuteWithArguments runs the root command with explicit arguments instead of os.Args.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	return application.Execute()
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

// DefaultConfigurationValues produces the Viper defaults applied beneath configuration files.
func DefaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:     string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant:    string(utils.LogFormatStructured),
		ceilingDirectoriesConfigKeyConstant: []string{},
	}
	for configurationKey, configurationValue := range exclude.DefaultConfigurationValues(excludeConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

// Only the per-user configuration directory is searched.
func defaultConfigurationSearchPaths() []string {
	userConfigurationDirectory, userConfigurationError := os.UserConfigDir()
	if userConfigurationError != nil {
		return nil
	}
	return []string{filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant)}
}

// Each configured value may itself hold a path list.
func (application *Application) ceilingDirectories() []string {
	ceilingDirectories := lo.FlatMap(application.configuration.Repository.CeilingDirectories, func(configuredValue string, _ int) []string {
		return gitrepo.ParseCeilingDirectories(configuredValue)
	})
	return application.homeExpander.ExpandAll(ceilingDirectories)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	configurationFilePath := application.configurationFilePath
	if len(configurationFilePath) > 0 {
		configurationFilePath = application.homeExpander.Expand(configurationFilePath)
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, DefaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Strings(configurationCeilingFieldConstant, application.configuration.Repository.CeilingDirectories),
	)

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
