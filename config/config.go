// Package config loads the loader's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultMappingName  = "loader_handshake"
	DefaultWindowTitle  = "loader"
	DefaultMessageID    = 0x8000
	DefaultIdleInterval = 100 * time.Millisecond
	DefaultLogFile      = "Log.log"
)

var (
	// DefaultExitFn is invoked by functions ending in the "OrExit"
	// suffix when an error occurs.
	DefaultExitFn = func(err error) {
		log.Fatalln(err)
	}
)

// Duration is a time.Duration that decodes from strings like "100ms".
type Duration struct {
	time.Duration
}

func (o *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("failed to parse duration %q - %w", text, err)
	}

	o.Duration = d
	return nil
}

func (o Duration) MarshalText() ([]byte, error) {
	return []byte(o.Duration.String()), nil
}

// Config configures a loader session.
type Config struct {
	// Executable is the program to spawn. A relative path is
	// resolved against the working directory.
	Executable string `toml:"executable"`

	Args []string `toml:"args"`

	// MappingName is the name of the shared memory region the
	// target opens to read the handshake.
	MappingName string `toml:"mapping_name"`

	WindowTitle string `toml:"window_title"`

	// MessageID is both the notification kind that carries
	// requests and the handshake's request code.
	MessageID uint32 `toml:"message_id"`

	IdleInterval Duration `toml:"idle_interval"`

	LogFile string `toml:"log_file"`

	Verbose bool `toml:"verbose"`
}

// Default returns a Config with every field except Executable set.
func Default() Config {
	return Config{
		MappingName:  DefaultMappingName,
		WindowTitle:  DefaultWindowTitle,
		MessageID:    DefaultMessageID,
		IdleInterval: Duration{Duration: DefaultIdleInterval},
		LogFile:      DefaultLogFile,
	}
}

// LoadOrExit calls Load. DefaultExitFn is invoked if an error occurs.
func LoadOrExit(filePath string) Config {
	c, err := Load(filePath)
	if err != nil {
		DefaultExitFn(err)
	}

	return c
}

// Load decodes the file at filePath on top of Default. Keys that do
// not map to a Config field are an error.
func Load(filePath string) (Config, error) {
	c := Default()

	meta, err := toml.DecodeFile(filePath, &c)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config file %q - %w", filePath, err)
	}

	undecoded := meta.Undecoded()
	if len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return Config{}, fmt.Errorf("config file %q contains unknown keys: %s",
			filePath, strings.Join(keys, ", "))
	}

	return c, nil
}

// Validate checks that the Config can start a session.
func (o Config) Validate() error {
	var errs []error

	if o.Executable == "" {
		errs = append(errs, errors.New("executable is not set"))
	}

	if o.MappingName == "" {
		errs = append(errs, errors.New("mapping name is not set"))
	}

	if o.MessageID == 0 {
		errs = append(errs, errors.New("message id must be non-zero"))
	}

	if o.IdleInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("idle interval must be positive - got %s",
			o.IdleInterval.Duration))
	}

	err := errors.Join(errs...)
	if err != nil {
		return fmt.Errorf("invalid config - %w", err)
	}

	return nil
}
