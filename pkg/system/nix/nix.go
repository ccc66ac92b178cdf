// Package nix turns an InstallConfig into the NixOS module that the
// provisioning flake imports as system.config.
package nix

import (
	"strings"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/nixexpr"
	"github.com/julas23/nixos/pkg/utils"
)

const modulePreamble = `# Centralized System Configuration
# This file contains all system configuration options in one place
# All modules read from this configuration to determine what to enable

{ lib, ... }:

{
  options.system.config = lib.mkOption {
    type = lib.types.attrs;
    default = {};
    description = "Centralized system configuration";
  };

  config.system.config = {
`

const moduleClosing = `
  };
}
`

// ConfigRecord builds the system.config attribute set. Key names and nesting
// are read by the provisioning modules and must stay stable.
func ConfigRecord(c *nixos.InstallConfig) nixexpr.Record {
	root, ok := c.Storage.Root()
	if !ok {
		root = nixos.NewDiskConfig("", "", "")
	}

	extra := nixexpr.List{}
	for _, d := range c.Storage.Disks {
		if d.Mountpoint == "/" && d.Device == root.Device {
			continue
		}
		extra = append(extra, nixexpr.Record{
			nixexpr.A("device", nixexpr.Str(d.Device)),
			nixexpr.A("filesystem", nixexpr.Str(d.Filesystem)),
			nixexpr.A("mountpoint", nixexpr.Str(d.Mountpoint)),
		})
	}

	return nixexpr.Record{
		nixexpr.A("system", nixexpr.Record{
			nixexpr.A("hostname", nixexpr.Str(c.System.Hostname)),
			nixexpr.A("stateVersion", nixexpr.Str(c.System.StateVersion)),
		}),
		nixexpr.A("locale", nixexpr.Record{
			nixexpr.A("timezone", nixexpr.Str(c.System.Timezone)),
			nixexpr.A("language", nixexpr.Str(c.System.Locale)),
			nixexpr.A("extraLocales", nixexpr.List{nixexpr.Str(localeEntry(c.System.Locale))}),
			nixexpr.A("keyboard", nixexpr.Record{
				nixexpr.A("console", nixexpr.Str(c.System.ConsoleKeymap)),
				nixexpr.A("layout", nixexpr.Str(c.System.XkbLayout)),
				nixexpr.A("variant", nixexpr.Str(c.System.XkbVariant)),
				nixexpr.A("options", nixexpr.Str("")),
			}),
		}),
		nixexpr.A("hardware", nixexpr.Record{
			nixexpr.A("gpu", nixexpr.Str(c.Hardware.GPU)),
			nixexpr.A("audio", nixexpr.Record{
				nixexpr.A("enable", nixexpr.Bool(c.Hardware.Audio)),
				nixexpr.A("backend", nixexpr.Str(c.Hardware.AudioBackend)),
			}),
			nixexpr.A("bluetooth", enable(c.Hardware.Bluetooth)),
			nixexpr.A("printing", enable(c.Hardware.Printing)),
		}),
		nixexpr.A("graphics", nixexpr.Record{
			nixexpr.A("server", nixexpr.Str(string(c.Environment.Server))),
			nixexpr.A("desktop", nixexpr.Str(c.Environment.Desktop)),
			nixexpr.A("packages", nixexpr.Strings(c.Desktop.Packages())),
		}),
		nixexpr.A("storage", nixexpr.Record{
			nixexpr.A("device", nixexpr.Str(root.Device)),
			nixexpr.A("lvm", nixexpr.Record{
				nixexpr.A("enable", nixexpr.Bool(root.LVM)),
				nixexpr.A("vgName", nixexpr.Str(root.VGName)),
				nixexpr.A("lvName", nixexpr.Str(root.LVName)),
			}),
			nixexpr.A("zfs", nixexpr.Record{
				nixexpr.A("enable", nixexpr.Bool(root.ZFS)),
				nixexpr.A("poolName", nixexpr.Str(root.PoolName)),
			}),
			nixexpr.A("filesystem", nixexpr.Str(root.Filesystem)),
			nixexpr.A("mountpoint", nixexpr.Str("/")),
			nixexpr.A("extraDisks", extra),
		}),
		nixexpr.A("services", nixexpr.Record{
			nixexpr.A("docker", enable(c.Services.Docker)),
			nixexpr.A("ollama", enable(c.Services.Ollama)),
			nixexpr.A("ssh", nixexpr.Record{
				nixexpr.A("enable", nixexpr.Bool(c.Services.SSH)),
				nixexpr.A("permitRootLogin", nixexpr.Bool(c.Services.SSHPermitRoot)),
			}),
			nixexpr.A("lsyncd", enable(false)),
		}),
		nixexpr.A("user", nixexpr.Record{
			nixexpr.A("name", nixexpr.Str(c.User.Username)),
			nixexpr.A("fullName", nixexpr.Str(c.User.FullName)),
			nixexpr.A("uid", nixexpr.Int(c.User.UID)),
			nixexpr.A("gid", nixexpr.Int(c.User.GID)),
			nixexpr.A("group", nixexpr.Str(c.User.Group)),
			nixexpr.A("extraGroups", nixexpr.Strings(c.User.Groups)),
			nixexpr.A("sudoer", nixexpr.Bool(c.User.Sudoer)),
			nixexpr.A("nopasswd", nixexpr.Bool(c.User.Sudoer && c.User.NoPasswd)),
			nixexpr.A("shell", nixexpr.Str(c.User.Shell)),
		}),
		nixexpr.A("network", nixexpr.Record{
			nixexpr.A("networkmanager", enable(true)),
			nixexpr.A("firewall", nixexpr.Record{
				nixexpr.A("enable", nixexpr.Bool(true)),
				nixexpr.A("allowedTCPPorts", nixexpr.List{}),
				nixexpr.A("allowedUDPPorts", nixexpr.List{}),
			}),
		}),
		nixexpr.A("boot", nixexpr.Record{
			nixexpr.A("loader", nixexpr.Str(c.System.BootLoader)),
			nixexpr.A("timeout", nixexpr.Int(5)),
			nixexpr.A("quietBoot", nixexpr.Bool(true)),
		}),
		nixexpr.A("nix", nixexpr.Record{
			nixexpr.A("flakes", nixexpr.Bool(true)),
			nixexpr.A("autoOptimiseStore", nixexpr.Bool(true)),
			nixexpr.A("gc", nixexpr.Record{
				nixexpr.A("enable", nixexpr.Bool(true)),
				nixexpr.A("dates", nixexpr.Str("weekly")),
				nixexpr.A("options", nixexpr.Str("--delete-older-than 7d")),
			}),
		}),
	}
}

func enable(on bool) nixexpr.Record {
	return nixexpr.Record{nixexpr.A("enable", nixexpr.Bool(on))}
}

// localeEntry turns "pt_BR.UTF-8" into the supportedLocales form
// "pt_BR.UTF-8/UTF-8".
func localeEntry(locale string) string {
	charset := "UTF-8"
	if _, cs, ok := strings.Cut(locale, "."); ok && cs != "" {
		charset = cs
	}
	return locale + "/" + charset
}

// Module renders the complete module file.
func Module(c *nixos.InstallConfig) string {
	return modulePreamble + nixexpr.RenderAttrs(ConfigRecord(c), 2) + moduleClosing
}

// WriteRootPassword writes a crypt(3) hash for users.users.root.hashedPasswordFile.
// The file is readable by root only.
func WriteRootPassword(path, hash string) error {
	if err := utils.WriteFileAtomic(path, []byte(hash+"\n"), 0o600); err != nil {
		return &nixos.SerializationError{Op: "write root password", Path: path, Err: err}
	}
	return nil
}

// WriteConfig renders the module and writes it atomically to path.
func WriteConfig(path string, c *nixos.InstallConfig) error {
	if err := utils.WriteFileAtomic(path, []byte(Module(c)), 0o644); err != nil {
		return &nixos.SerializationError{Op: "write config", Path: path, Err: err}
	}
	return nil
}
