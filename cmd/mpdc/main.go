// Command mpdc wires the Protocol Client, Scheduler, Key Resolver and
// Query Dispatcher together into a runnable process. It owns none of
// the terminal rendering or panel logic a full TUI would need — that
// is left to whatever embeds this core — but it does read encoded key
// sequences from stdin (one sequence per line, using the key encoding
// grammar) so the resolver and dispatcher can be exercised end to end
// without a terminal UI dependency.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/famish99/mpdc/internal/config"
	"github.com/famish99/mpdc/internal/dispatch"
	"github.com/famish99/mpdc/internal/event"
	"github.com/famish99/mpdc/internal/keys"
	"github.com/famish99/mpdc/internal/mpdlog"
	"github.com/famish99/mpdc/internal/mpdproto"
	"github.com/famish99/mpdc/internal/scheduler"
)

var configPath = flag.String("config", getDefaultConfigPath(), "Path to configuration file")

type schedArgs struct{}

func main() {
	flag.Parse()
	mpdlog.Init()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		mpdlog.Logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}

	conn, err := dialMpd(cfg)
	if err != nil {
		mpdlog.Logger.Fatal().Err(err).Msg("failed to connect to mpd")
	}
	client := mpdproto.NewClient(conn)
	mpdlog.Logger.Info().Str("address", cfg.Address).Str("version", client.Version().String()).Msg("connected to mpd")

	events := make(chan event.UiEvent, 64)

	disp := dispatch.New(client, events)
	disp.SetReconnectPolicy(cfg.Reconnect.MaxAttempts, time.Duration(cfg.Reconnect.BackoffMs)*time.Millisecond)
	disp.Start()
	defer disp.Stop()

	sched := scheduler.New(schedArgs{}, scheduler.DefaultTimeProvider{})
	sched.Start()
	defer sched.Stop()

	resolver, err := buildResolver(cfg, sched)
	if err != nil {
		mpdlog.Logger.Fatal().Err(err).Msg("failed to build key resolver")
	}

	app := &application{disp: disp}
	app.resolver.Store(resolver)

	holder := config.NewHolder(cfg, *configPath)
	reloads := make(chan *config.Config, 1)
	holder.RegisterListener(reloads)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if err := holder.Watch(watchCtx); err != nil {
		mpdlog.Logger.Warn().Err(err).Msg("config hot-reload disabled")
	}

	sink := &eventSink{events: events}
	go readKeySequences(os.Stdin, app, sink)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			mpdlog.Logger.Info().Msg("shutting down")
			return
		case newCfg := <-reloads:
			if r, err := buildResolver(newCfg, sched); err != nil {
				mpdlog.Logger.Warn().Err(err).Msg("reloaded config has invalid key bindings, keeping previous resolver")
			} else {
				app.resolver.Store(r)
			}
		case e := <-events:
			app.handle(e)
		}
	}
}

// application reacts to UiEvents by submitting follow-up queries. It
// is the minimal stand-in for what a real UI's panes would do with
// resolved actions and subsystem-change pushes. resolver is swapped
// atomically so a config hot-reload never races the stdin reader
// goroutine.
type application struct {
	disp     *dispatch.Dispatcher
	resolver atomic.Pointer[keys.Resolver]
}

func (a *application) handle(e event.UiEvent) {
	switch e.Kind {
	case event.KindActionResolved:
		a.runActions(e.Actions)
	case event.KindInsertModeFlush:
		mpdlog.Logger.Debug().Strs("flush", actionNames(e.FlushActions)).Str("buffered", e.BufferedKeys.String()).Msg("insert mode flush")
	case event.KindSubsystemChanged:
		a.onSubsystemChanged(e.Changed)
	case event.KindQueryResult:
		mpdlog.Logger.Info().Str("query_id", e.QueryID).Str("pane", e.Pane).Msg("query result")
	case event.KindQueryFailed:
		mpdlog.Logger.Warn().Err(e.Err).Str("query_id", e.QueryID).Str("pane", e.Pane).Msg("query failed")
	case event.KindReconnected:
		mpdlog.Logger.Info().Msg("reconnected")
	}
}

func (a *application) runActions(actions []keys.Action) {
	for _, act := range actions {
		mpdlog.Logger.Debug().Str("action", string(act)).Msg("action resolved")
		switch act {
		case "Quit":
			os.Exit(0)
		case "Next", "Previous", "PlayPause":
			a.disp.Submit(&dispatch.Query{
				ID:        uuid.NewString(),
				ReplaceID: "transport",
				Pane:      "transport",
				Run: func(c *mpdproto.Client) (any, error) {
					switch act {
					case "Next":
						return nil, c.Next()
					case "Previous":
						return nil, c.Previous()
					default:
						return nil, c.PauseToggle()
					}
				},
			})
		}
	}
}

func (a *application) onSubsystemChanged(s event.Subsystem) {
	if s != event.SubsystemPlayer && s != event.SubsystemMixer {
		return
	}
	a.disp.Submit(&dispatch.Query{
		ID:        uuid.NewString(),
		ReplaceID: "status",
		Pane:      "status",
		Run: func(c *mpdproto.Client) (any, error) {
			status, err := c.GetStatus()
			if err != nil {
				return nil, err
			}
			song, err := c.CurrentSong()
			if err != nil {
				return nil, err
			}
			return struct {
				Status *mpdproto.Status
				Song   *mpdproto.Song
			}{status, song}, nil
		},
	})
}

// eventSink adapts the Resolver's callback interface onto the shared
// event channel so resolved actions flow through the same loop as
// query results and idle pushes.
type eventSink struct {
	events chan<- event.UiEvent
}

func (s *eventSink) ActionResolved(actions []keys.Action) {
	s.events <- event.ActionResolved(actions)
}

func (s *eventSink) InsertModeFlush(actions []keys.Action, buffered keys.KeySequence) {
	s.events <- event.InsertModeFlush(actions, buffered)
}

func actionNames(actions []keys.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// readKeySequences treats each input line as one encoded key sequence
// and feeds its keys to the resolver one at a time, the way
// a terminal input driver would deliver individual key events.
func readKeySequences(r *os.File, app *application, sink keys.Sink) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seq, err := keys.ParseKeySequence(line)
		if err != nil {
			mpdlog.Logger.Warn().Err(err).Str("input", line).Msg("could not parse key sequence")
			continue
		}
		resolver := app.resolver.Load()
		for _, k := range seq {
			resolver.HandleKey(k, sink)
		}
	}
}

func buildResolver(cfg *config.Config, sched *scheduler.Scheduler[schedArgs]) (*keys.Resolver, error) {
	normalBindings, err := cfg.NormalBindings()
	if err != nil {
		return nil, fmt.Errorf("normal bindings: %w", err)
	}
	insertBindings, err := cfg.InsertBindings()
	if err != nil {
		return nil, fmt.Errorf("insert bindings: %w", err)
	}

	normalRoot, err := keys.BuildTrie(normalBindings)
	if err != nil {
		return nil, fmt.Errorf("normal trie: %w", err)
	}
	insertRoot, err := keys.BuildTrie(insertBindings)
	if err != nil {
		return nil, fmt.Errorf("insert trie: %w", err)
	}

	resolver := keys.NewResolver(normalRoot, insertRoot, keys.NewSchedulerAdapter(sched))
	resolver.SetTimeouts(
		time.Duration(cfg.NormalTimeoutMs)*time.Millisecond,
		time.Duration(cfg.InsertTimeoutMs)*time.Millisecond,
	)
	return resolver, nil
}

func dialMpd(cfg *config.Config) (*mpdproto.Conn, error) {
	addr, err := parseAddress(cfg.Address)
	if err != nil {
		return nil, err
	}
	opts := mpdproto.Options{
		Password:            cfg.Password,
		Partition:           cfg.Partition.Name,
		PartitionAutocreate: cfg.Partition.Autocreate,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        5 * time.Second,
	}
	return mpdproto.Dial(addr, opts)
}

// parseAddress accepts "@name" for a Linux abstract socket, an
// absolute path starting with "/" for a Unix domain socket, and
// "host:port" (split at the last colon) for TCP. Any other value is
// rejected.
func parseAddress(raw string) (mpdproto.Address, error) {
	if strings.HasPrefix(raw, "@") {
		return mpdproto.NewUnixAbstractAddress(raw[1:]), nil
	}
	if strings.HasPrefix(raw, "/") {
		return mpdproto.NewUnixPathAddress(raw), nil
	}
	idx := strings.LastIndex(raw, ":")
	if idx < 0 {
		return mpdproto.Address{}, fmt.Errorf("config: address %q is neither host:port nor a socket path", raw)
	}
	return mpdproto.NewTCPAddress(raw[:idx], raw[idx+1:]), nil
}

func getDefaultConfigPath() string {
	locations := []string{
		"./mpdc.yaml",
		"./config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "mpdc", "config.yaml"),
		"/etc/mpdc/config.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return locations[0]
}
