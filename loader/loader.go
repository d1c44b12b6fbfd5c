// Package loader runs a handshake session with a target program.
//
// A session creates a message transport, publishes the transport's
// handle through a named shared memory region and then spawns the
// target. The target sends requests to the transport, each carrying
// the address of a request record in its own memory, and blocks until
// the loader replies. The session ends when the target exits or the
// transport is destroyed.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/stephen-fox/reqloader/config"
	"gitlab.com/stephen-fox/reqloader/memory"
	"gitlab.com/stephen-fox/reqloader/process"
	"gitlab.com/stephen-fox/reqloader/protocol"
	"gitlab.com/stephen-fox/reqloader/shm"
	"gitlab.com/stephen-fox/reqloader/transport"
	"gitlab.com/stephen-fox/reqloader/wire"
)

var (
	// DefaultExitFn is invoked by functions ending in the "OrExit"
	// suffix when an error occurs.
	DefaultExitFn = func(err error) {
		log.Fatalln(err)
	}
)

// Channel publishes the handshake to the target.
type Channel interface {
	Write(p []byte) error
	Close() error
}

// Target is the spawned program.
type Target interface {
	process.Tracked
}

// Config configures a Session. Configs built with ConfigFromFile are
// expected to have passed config.Config.Validate.
type Config struct {
	// Executable is the program to spawn. A relative path is
	// resolved against the working directory.
	Executable string
	Args       []string

	MappingName  string
	WindowTitle  string
	MessageID    uint32
	IdleInterval time.Duration

	// Logger receives session events and per-request failures.
	// Nil discards them.
	Logger *log.Logger

	// Verbose, if non-nil, receives a line for every notification.
	Verbose *log.Logger

	// Memory accesses the target's memory. Nil means memory.Remote.
	Memory memory.Accessor

	// NewSinkFn creates the transport. Nil means transport.NewWindow.
	NewSinkFn func(transport.WindowConfig) (transport.Sink, error)

	// CreateChannelFn creates the handshake channel. Nil means
	// shm.Create.
	CreateChannelFn func(name string, capacity int) (Channel, error)

	// SpawnFn starts the target. Nil means process.Spawn.
	SpawnFn func(exePath string, args ...string) (Target, error)
}

// ConfigFromFile maps a loaded config.Config to a session Config.
func ConfigFromFile(c config.Config, logger *log.Logger) Config {
	sessionConfig := Config{
		Executable:   c.Executable,
		Args:         c.Args,
		MappingName:  c.MappingName,
		WindowTitle:  c.WindowTitle,
		MessageID:    c.MessageID,
		IdleInterval: c.IdleInterval.Duration,
		Logger:       logger,
	}

	if c.Verbose {
		sessionConfig.Verbose = logger
	}

	return sessionConfig
}

func (o Config) validate() error {
	switch o.MessageID {
	case transport.KindDestroy, transport.KindClose:
		return fmt.Errorf("message id 0x%x is reserved for transport notifications", o.MessageID)
	}

	return nil
}

func (o Config) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}

	return o.Logger
}

func (o Config) newSink(windowConfig transport.WindowConfig) (transport.Sink, error) {
	if o.NewSinkFn != nil {
		return o.NewSinkFn(windowConfig)
	}

	return transport.NewWindow(windowConfig)
}

func (o Config) createChannel(name string, capacity int) (Channel, error) {
	if o.CreateChannelFn != nil {
		return o.CreateChannelFn(name, capacity)
	}

	return shm.Create(name, capacity)
}

func (o Config) spawn(exePath string, args ...string) (Target, error) {
	if o.SpawnFn != nil {
		return o.SpawnFn(exePath, args...)
	}

	return process.Spawn(exePath, args...)
}

func (o Config) memory() memory.Accessor {
	if o.Memory == nil {
		return memory.Remote{}
	}

	return o.Memory
}

// New returns a Session that has not been started.
func New(config Config) (*Session, error) {
	err := config.validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate session config - %w", err)
	}

	logger := config.logger()

	return &Session{
		config: config,
		logger: logger,
		handler: protocol.Handler{
			Memory:  config.memory(),
			Logger:  logger,
			Verbose: config.Verbose,
		},
	}, nil
}

// RunOrExit creates, starts and runs a Session. The Session is closed
// before DefaultExitFn is invoked, so its shared memory is released
// even though DefaultExitFn does not return.
func RunOrExit(config Config) {
	session, err := New(config)
	if err != nil {
		DefaultExitFn(err)
		return
	}

	err = session.Start()
	if err == nil {
		err = session.Run()
	}

	err = errors.Join(err, session.Close())
	if err != nil {
		DefaultExitFn(err)
	}
}

// Session is a single handshake session with one target.
//
// Start, Run and Close must be called from the same goroutine.
type Session struct {
	config  Config
	logger  *log.Logger
	handler protocol.Handler
	sink    transport.Sink
	channel Channel
	target  Target
	probe   *process.Probe
	closed  bool
}

// Start creates the transport, publishes the handshake and spawns
// the target, in that order. If a step fails, the resources created
// by the earlier steps are released.
func (o *Session) Start() error {
	if o.closed {
		return errors.New("session is closed")
	}

	if o.sink != nil {
		return errors.New("session was already started")
	}

	exePath, err := resolveExecutable(o.config.Executable)
	if err != nil {
		return err
	}

	sink, err := o.config.newSink(transport.WindowConfig{
		Title:        o.config.WindowTitle,
		IdleInterval: o.config.IdleInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize message transport - %w", err)
	}

	handshake := wire.Handshake(sink.Handle(), o.config.MessageID)

	if o.config.Verbose != nil {
		o.config.Verbose.Printf("handshake: %s", handshake)
	}

	channel, err := o.config.createChannel(o.config.MappingName, shm.HandshakeCapacity)
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to create handshake channel - %w", err),
			sink.Close())
	}

	err = channel.Write(wire.Encode(handshake))
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to write handshake - %w", err),
			channel.Close(),
			sink.Close())
	}

	target, err := o.config.spawn(exePath, o.config.Args...)
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to start target - %w", err),
			channel.Close(),
			sink.Close())
	}

	o.sink = sink
	o.channel = channel
	o.target = target
	o.probe = process.NewProbe(target, o.logger)

	o.logger.Printf("started %q (pid %d) - transport handle: 0x%x, mapping: %q",
		exePath, target.PID(), sink.Handle(), o.config.MappingName)

	return nil
}

func resolveExecutable(exePath string) (string, error) {
	if filepath.IsAbs(exePath) {
		return exePath, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory - %w", err)
	}

	return filepath.Join(wd, exePath), nil
}

// Run services the target's requests until the target exits or the
// transport is destroyed. Both outcomes return nil.
func (o *Session) Run() error {
	if o.sink == nil {
		return errors.New("session was not started")
	}

	err := o.sink.Run(o)
	if err != nil {
		return fmt.Errorf("failed to run message loop - %w", err)
	}

	o.logger.Println("session ended")

	return nil
}

// Notify implements transport.Handler.
func (o *Session) Notify(n transport.Notification) (resp transport.Response) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("recovered from panic while handling notification 0x%x - %v", n.Kind, r)
			resp = transport.Response{}
		}
	}()

	if o.config.Verbose != nil {
		o.config.Verbose.Printf("received notification 0x%x", n.Kind)
	}

	switch {
	case n.Kind == transport.KindDestroy, n.Kind == transport.KindClose:
		o.logger.Printf("transport is closing (notification 0x%x)", n.Kind)
		return transport.Response{Stop: true}
	case n.Kind == o.config.MessageID && int(n.LParam) > 0:
		reply, err := o.handler.Handle(memory.RemoteAddress{
			PID:     o.target.PID(),
			Address: n.LParam,
		})
		if err != nil {
			o.logger.Printf("failed to handle request - %s", err)
			return transport.Response{}
		}

		return transport.Response{
			Result:  uintptr(reply),
			Handled: true,
		}
	default:
		return transport.Response{}
	}
}

// Idle implements transport.Handler. It stops the loop once the
// target has exited.
func (o *Session) Idle() bool {
	return o.probe.Alive()
}

// Close releases the handshake channel and the transport. The target
// is left running.
func (o *Session) Close() error {
	if o.closed {
		return nil
	}

	o.closed = true

	var errs []error

	if o.channel != nil {
		err := o.channel.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to close handshake channel - %w", err))
		}
	}

	if o.sink != nil {
		err := o.sink.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to close message transport - %w", err))
		}
	}

	return errors.Join(errs...)
}
