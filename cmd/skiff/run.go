package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"skiff/internal/buffers"
	"skiff/internal/config"
	"skiff/internal/errors"
	"skiff/internal/hooks"
	"skiff/internal/index"
	"skiff/internal/keymap"
	"skiff/internal/lock"
	"skiff/internal/log"
	"skiff/internal/poll"
	"skiff/internal/session"
	"skiff/internal/signals"
	"skiff/internal/term"
	"skiff/internal/worker"

	"github.com/spf13/cobra"
)

const watchDebounce = time.Second

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// runSession wires the collaborators together and blocks in the event
// loop until the session ends.
func runSession(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Debug = true
	}

	if err := os.MkdirAll(cfg.Directories.Data, 0o755); err != nil {
		return err
	}
	if err := log.SetFile(cfg.Log.File); err != nil {
		return err
	}
	log.SetDebug(cfg.Log.Debug)
	log.Info("skiff %s starting", version)

	// Lock contention is fatal before the loop starts; a second
	// instance must not touch the index.
	lk := lock.New(cfg.Directories.Data)
	if err := lk.Acquire(); err != nil {
		if errors.IsLockHeld(err) {
			return fmt.Errorf("%v\nis another skiff running? remove the lock file if not", err)
		}
		return err
	}

	store, err := index.Open(cfg.Directories.Data)
	if err != nil {
		lk.Release()
		return err
	}

	var sources []poll.Source
	var names []string
	for _, sc := range cfg.Sources {
		src, err := poll.NewMaildirSource(sc)
		if err != nil {
			lk.Release()
			return err
		}
		sources = append(sources, src)
		names = append(names, sc.Name)
	}

	global, err := keymap.Default()
	if err != nil {
		lk.Release()
		return err
	}
	if err := keymap.ApplyOverrides(global, cfg.Keys); err != nil {
		lk.Release()
		return err
	}

	registry := worker.NewRegistry()
	supervisor := worker.NewSupervisor(registry)
	hk := hooks.NewManager(cfg.Directories.Hooks, supervisor)

	trm := term.New()
	width, height := 80, 24
	if w, h, err := trm.Size(); err == nil {
		width, height = w, h
	}
	mgr := buffers.NewManager(trm.Out(), width, height)
	inbox := buffers.NewInboxBuffer(names)
	mgr.Push(inbox)

	manager := poll.NewManager(sources, supervisor, store, func(source string, n int) {
		inbox.AddMail(source, n)
		hk.Run("new-mail", map[string]string{
			"SOURCE": source,
			"COUNT":  strconv.Itoa(n),
		})
	})

	var watcher *poll.Watcher
	for _, src := range sources {
		if len(src.WatchDirs()) > 0 {
			watcher, err = poll.NewWatcher(sources, watchDebounce)
			if err != nil {
				lk.Release()
				return err
			}
			break
		}
	}

	flags := signals.NewFlags()
	bridge := signals.NewBridge(flags)
	bridge.Install()

	if err := trm.Raw(); err != nil {
		lk.Release()
		return err
	}
	defer trm.Restore()

	lease := worker.NewPeriodic("lease-renewal",
		time.Duration(cfg.Intervals.LeaseRenewal)*time.Second, registry, lk.Renew)
	heartbeat := worker.NewPeriodic("heartbeat",
		time.Duration(cfg.Intervals.Heartbeat)*time.Second, registry, func() error {
			log.Debug("heartbeat: %d buffer(s) open", mgr.Len())
			return nil
		})
	autopoll := worker.NewPeriodic("autopoll",
		time.Duration(cfg.Intervals.Poll)*time.Second, registry, func() error {
			manager.PollAll()
			return nil
		})

	manager.ConnectAll()
	manager.PollAll()

	sess := session.New(session.Deps{
		Flags:           flags,
		Bridge:          bridge,
		Events:          trm.Events(),
		Buffers:         mgr,
		Global:          global,
		Registry:        registry,
		Supervisor:      supervisor,
		Lock:            lk,
		Store:           store,
		Hooks:           hk,
		Poll:            manager,
		Watcher:         watcher,
		Heartbeat:       heartbeat,
		Lease:           lease,
		Autopoll:        autopoll,
		RestoreTerminal: trm.Restore,
		Size:            trm.Size,
		DataDir:         cfg.Directories.Data,
	})

	runErr := sess.Run()
	if report := sess.Report(); report != "" {
		fmt.Fprint(os.Stderr, report)
	}
	return runErr
}
