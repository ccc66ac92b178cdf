package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	wishbubble "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	nxssetup "github.com/julas23/nixos/cmd/nxs-setup"
	nixos "github.com/julas23/nixos/pkg"
	nxslog "github.com/julas23/nixos/pkg/logging"
	"github.com/julas23/nixos/pkg/settings"
	"github.com/julas23/nixos/pkg/snapshot"
	"github.com/julas23/nixos/pkg/system"
	"github.com/julas23/nixos/pkg/system/nix"
	"github.com/julas23/nixos/pkg/version"
	"github.com/julas23/nixos/pkg/wizard"
	"github.com/sirupsen/logrus"
)

func main() {
	var cfgFile, dataDir, listen, authorizedKeys string
	flag.StringVar(&cfgFile, "config", "", "config file (default is "+settings.DefaultFile+")")
	flag.StringVar(&dataDir, "data-dir", "", "Directory for storing SSH host key")
	flag.StringVar(&listen, "listen", "", "address to listen on (default from ssh.listen)")
	flag.StringVar(&authorizedKeys, "authorized-keys", "", "authorized_keys file (default from ssh.authorized_keys)")
	flag.Parse()

	config, err := settings.Load(cfgFile)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if listen != "" {
		config.SSHListen = listen
	}
	if authorizedKeys != "" {
		config.SSHAuthorizedKeys = authorizedKeys
	}

	log, closer, err := nxslog.New(logOptions(config))
	if err != nil {
		logrus.Fatalf("failed to set up logging: %v", err)
	}
	defer closer.Close()

	keys, err := nxssetup.LoadAuthorizedKeys(config.SSHAuthorizedKeys)
	if err != nil {
		log.Fatalf("refusing to start without client authentication: %v", err)
	}

	hostKeyPath := config.SSHHostKey
	if dataDir != "" {
		hostKeyPath = filepath.Join(dataDir, "nxs_ssh_host_key")
	} else if !filepath.IsAbs(hostKeyPath) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("failed to get home directory: %v", err)
		}
		hostKeyPath = filepath.Join(homeDir, hostKeyPath)
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		log.Fatalf("failed to create host key directory: %v", err)
	}

	prober := system.NewHostProber(config, log)
	facts := system.Detect(context.Background(), prober, config.ProbeTimeout, log)
	header := nxssetup.Header{Facts: facts, Version: version.GetNXSRelease().Short()}

	// Sessions share the output paths.
	var writeMu sync.Mutex
	finish := func(cfg *nixos.InstallConfig, secrets wizard.Secrets) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := nix.WriteConfig(config.ConfigPath, cfg); err != nil {
			log.WithError(err).Error("failed to write configuration")
			return err
		}
		if err := snapshot.Save(config.SnapshotPath, cfg); err != nil {
			log.WithError(err).Error("failed to write snapshot")
			return err
		}
		if secrets.RootPasswordHash != "" && config.RootPasswordPath != "" {
			if err := nix.WriteRootPassword(config.RootPasswordPath, secrets.RootPasswordHash); err != nil {
				log.WithError(err).Error("failed to write root password hash")
				return err
			}
		}
		log.WithField("path", config.ConfigPath).Info("configuration written")
		return nil
	}

	factory := func(s ssh.Session) (*wizard.Session, nxssetup.Header, nxssetup.FinishFunc, error) {
		sessionLog := log.WithField("user", s.User())
		cfg := config.NewInstallConfig()
		system.ApplyNetwork(cfg, system.CheckNetwork(s.Context(), prober, config.ProbeTimeout, sessionLog))
		session := wizard.NewSession(cfg, wizard.Options{
			Disks: facts.Disks,
			CheckNetwork: func() system.NetworkFacts {
				return system.CheckNetwork(s.Context(), prober, config.ProbeTimeout, sessionLog)
			},
			Log: sessionLog,
		})
		return session, header, finish, nil
	}

	srv, err := wish.NewServer(
		wish.WithAddress(config.SSHListen),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithPublicKeyAuth(nxssetup.PublicKeyHandler(keys, log)),
		wish.WithMiddleware(
			wishbubble.Middleware(nxssetup.WishHandler(factory)),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	log.Infof("nxs-ssh listening on %s (host key: %s, %d authorized keys)", config.SSHListen, hostKeyPath, len(keys))
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("error starting SSH server: %v", err)
	}
}

func logOptions(c nixos.ServerConfig) nxslog.Options {
	return nxslog.Options{File: c.LogFile, Verbose: c.Verbose, Journal: true}
}
