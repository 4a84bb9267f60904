package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/tr4cks/hwctl/controls"
	"github.com/tr4cks/hwctl/controls/backlight"
	"github.com/tr4cks/hwctl/controls/colorcal"
	"github.com/tr4cks/hwctl/controls/powerprofile"
	"github.com/tr4cks/hwctl/gestures"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", path.Join("/etc", fmt.Sprintf("%s.d", appName), "config.yaml"), "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "address the settings server listens on")
}

const appName = "hwctl"

var (
	configFilePath string
	logLevel       string
	listenAddr     string
	rootCmd        = &cobra.Command{
		Use:     appName,
		Short:   "Touch-key backlight, display calibration and gesture settings for sysfs devices",
		Version: "1.0.0",
		Args:    cobra.NoArgs,
		Run:     run,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

const defaultGesturesFile = "/etc/hwctl.d/gestures.yaml"

type Config struct {
	Username     string `validate:"required"`
	Password     string `validate:"required"`
	SysfsRoot    string `yaml:"sysfs-root"`
	GesturesFile string `yaml:"gestures-file"`
	Controls     map[string]map[string]interface{}
	Discord      *DiscordBotConfig
}

func parseYAML(r io.Reader, name string) (*Config, error) {
	config := Config{}
	decoder := yaml.NewDecoder(r)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error decoding YAML file %q: %w", name, err)
	}

	validate := validator.New()
	err = validate.Struct(config)
	if err != nil {
		return nil, fmt.Errorf("error during configuration validation: %w", err)
	}

	if config.SysfsRoot == "" {
		config.SysfsRoot = "/"
	}
	if config.GesturesFile == "" {
		config.GesturesFile = defaultGesturesFile
	}
	return &config, nil
}

func parseYAMLFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()
	return parseYAML(file, filePath)
}

func parseConfigFile(filePath string) *Config {
	config, err := parseYAMLFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse YAML file %q: %s\n", filePath, err)
		os.Exit(1)
	}
	return config
}

var internalControls = controls.Registry{
	"backlight":     backlight.New,
	"colors":        colorcal.New,
	"power-profile": powerprofile.New,
}

func createControls(config *Config, store controls.Store) []controls.Named {
	built, err := internalControls.Build(store, newLogger("control"), config.Controls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during control initialization: %s\n", err)
		os.Exit(1)
	}
	return built
}

func loadGestures(config *Config) *gestures.Settings {
	settings, err := gestures.Load(afero.NewOsFs(), config.GesturesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading gesture settings: %s\n", err)
		os.Exit(1)
	}
	return settings
}

func newLogger(scope string) zerolog.Logger {
	var outputWriter io.Writer = os.Stderr
	if gin.Mode() != gin.ReleaseMode {
		outputWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.
		New(outputWriter).
		With().
		Timestamp().
		Str("scope", scope).
		Logger()
}

func run(cmd *cobra.Command, args []string) {
	config := parseConfigFile(configFilePath)
	hardware := createControls(config, controls.NewSysfsStore(config.SysfsRoot))
	settings := loadGestures(config)
	logger := newLogger("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Discord != nil {
		bot, err := NewDiscordBot(config.Discord, hardware, settings)
		if err != nil {
			logger.Fatal().Err(err).Msg("Unable to create the Discord bot")
		}
		err = bot.Start()
		if err != nil {
			logger.Fatal().Err(err).Msg("Unable to start the Discord bot")
		}
		defer bot.Stop()
	}

	err := runServer(ctx, listenAddr, newRouter(config, hardware, settings, newLogger("web")))
	if err != nil {
		logger.Error().Err(err).Msg("Settings server stopped")
	}
}

func init() {
	rootCmd.AddCommand(infoCmd, getCmd, setCmd, gestureCmd)
}

func printJSON(value any) {
	jsonString, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Println("Error during JSON conversion:", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonString))
}

func findControl(config *Config, name string) controls.Control {
	hardware := createControls(config, controls.NewSysfsStore(config.SysfsRoot))
	control, err := lookupControl(hardware, name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return control
}

// lookupControl returns the named control when it is configured and backed
// by hardware on this device.
func lookupControl(hardware []controls.Named, name string) (controls.Control, error) {
	control, ok := controls.Find(hardware, name)
	if !ok {
		return nil, fmt.Errorf("control %q is not configured", name)
	}
	if !control.Supported() {
		return nil, fmt.Errorf("control %q is not supported on this device", name)
	}
	return control, nil
}

func parseToggle(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1", "enable", "enabled":
		return true, nil
	case "off", "false", "0", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", value)
}

var (
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Print every configured control with its bounds and current value",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			hardware := createControls(config, controls.NewSysfsStore(config.SysfsRoot))
			printJSON(controls.Snapshot(hardware))
		},
	}
	getCmd = &cobra.Command{
		Use:       "get CONTROL",
		Short:     "Read the current value of a control",
		Args:      cobra.ExactArgs(1),
		ValidArgs: internalControls.Names(),
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			control := findControl(config, args[0])

			result := control.Value()
			if result.Err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read %q: %s\n", args[0], result.Err)
				os.Exit(1)
			}
			fmt.Println(result.Value)
		},
	}
	setCmd = &cobra.Command{
		Use:   "set CONTROL VALUE",
		Short: "Write a new value to a control",
		Long:  "Write a new value to a control. Colour calibration takes the three channels quoted, e.g. hwctl set colors \"255 240 230\".",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			control := findControl(config, args[0])

			err := control.SetValue(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to set %q: %s\n", args[0], err)
				os.Exit(1)
			}
		},
	}
	gestureCmd = &cobra.Command{
		Use:   "gesture [KEY [on|off]]",
		Short: "List, read or change touchscreen gesture settings",
		Args:  cobra.RangeArgs(0, 2),
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			settings := loadGestures(config)

			switch len(args) {
			case 0:
				printJSON(settings.All())
			case 1:
				enabled, err := settings.Get(args[0])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to read gesture setting: %s\n", err)
					os.Exit(1)
				}
				fmt.Println(enabled)
			case 2:
				enabled, err := parseToggle(args[1])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Invalid value: %s\n", err)
					os.Exit(1)
				}
				err = settings.Set(args[0], enabled)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to change gesture setting: %s\n", err)
					os.Exit(1)
				}
			}
		},
	}
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
