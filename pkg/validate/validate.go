// Package validate holds the field predicates applied to user input. Every
// validator is pure: it returns nil or a *nixos.ValidationError carrying the
// reason to show when re-prompting.
package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	nixos "github.com/julas23/nixos/pkg"
)

// Func validates a raw string value.
type Func func(string) error

var (
	hostnameRe = regexp.MustCompile(`(?i)^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	usernameRe = regexp.MustCompile(`^[a-z_][a-z0-9_-]*$`)
	diskPathRe = regexp.MustCompile(`^/dev/(sd[a-z]|nvme\d+n\d+|mmcblk\d+|vd[a-z]|hd[a-z])$`)
	lvmNameRe  = regexp.MustCompile(`^[A-Za-z0-9+_.-]+$`)
	poolNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)
	packageRe  = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]*$`)
)

var reservedUsernames = []string{
	"root", "bin", "daemon", "sys", "sync", "games", "man", "lp", "mail", "news",
	"uucp", "proxy", "www-data", "backup", "list", "irc", "gnats", "nobody",
	"systemd-network", "systemd-resolve", "systemd-timesync", "messagebus", "sshd", "nixbld",
}

var reservedPoolNames = []string{"mirror", "raidz", "raidz1", "raidz2", "raidz3", "spare", "log", "cache"}

const minimumStateVersion = ">= 23.05"

func fail(field, format string, a ...any) error {
	return &nixos.ValidationError{Field: field, Reason: fmt.Sprintf(format, a...)}
}

// Hostname follows RFC 1123 labels.
func Hostname(hostname string) error {
	if hostname == "" {
		return fail("hostname", "Hostname cannot be empty")
	}
	if len(hostname) > 63 {
		return fail("hostname", "Hostname must be 63 characters or less")
	}
	if !hostnameRe.MatchString(hostname) {
		return fail("hostname", "Hostname must contain only letters, numbers, and hyphens (cannot start/end with hyphen)")
	}
	return nil
}

func Username(username string) error {
	if username == "" {
		return fail("username", "Username cannot be empty")
	}
	if len(username) > 32 {
		return fail("username", "Username must be 32 characters or less")
	}
	if !usernameRe.MatchString(username) {
		return fail("username", "Username must start with letter/underscore and contain only lowercase letters, numbers, underscore, hyphen")
	}
	if slices.Contains(reservedUsernames, username) {
		return fail("username", "Username '%s' is reserved by the system", username)
	}
	return nil
}

// GroupName uses the username character rules without the reserved list,
// since joining system groups such as wheel is expected.
func GroupName(group string) error {
	if group == "" {
		return fail("group", "Group name cannot be empty")
	}
	if len(group) > 32 {
		return fail("group", "Group name must be 32 characters or less")
	}
	if !usernameRe.MatchString(group) {
		return fail("group", "Group name '%s' may only contain lowercase letters, numbers, underscore, hyphen", group)
	}
	return nil
}

// GroupList validates a comma separated list of groups.
func GroupList(groups string) error {
	for _, g := range SplitList(groups) {
		if err := GroupName(g); err != nil {
			return err
		}
	}
	return nil
}

func FullName(fullname string) error {
	if fullname == "" {
		return fail("fullname", "Full name cannot be empty")
	}
	if len(fullname) > 128 {
		return fail("fullname", "Full name must be 128 characters or less")
	}
	return nil
}

// ID checks a uid or gid. 0-999 is the system range.
func ID(value int, name string) error {
	if value < 1000 {
		return fail(strings.ToLower(name), "%s must be 1000 or greater (0-999 reserved for system)", name)
	}
	if value > 65535 {
		return fail(strings.ToLower(name), "%s must be 65535 or less", name)
	}
	return nil
}

// NumericID returns a string validator for a uid/gid field.
func NumericID(name string) Func {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fail(strings.ToLower(name), "%s must be a number", name)
		}
		return ID(n, name)
	}
}

func DiskPath(path string) error {
	if path == "" {
		return fail("disk", "Disk path cannot be empty")
	}
	if !diskPathRe.MatchString(path) {
		return fail("disk", "Invalid disk path (e.g., /dev/sda, /dev/nvme0n1)")
	}
	return nil
}

func lvmName(field, label, name string) error {
	if name == "" {
		return fail(field, "%s name cannot be empty", label)
	}
	if len(name) > 128 {
		return fail(field, "%s name must be 128 characters or less", label)
	}
	if !lvmNameRe.MatchString(name) {
		return fail(field, "%s name can only contain letters, numbers, +, _, ., -", label)
	}
	if strings.HasPrefix(name, "-") {
		return fail(field, "%s name cannot start with hyphen", label)
	}
	return nil
}

func VGName(name string) error { return lvmName("vg", "Volume group", name) }

func LVName(name string) error { return lvmName("lv", "Logical volume", name) }

func PoolName(name string) error {
	if name == "" {
		return fail("pool", "Pool name cannot be empty")
	}
	if len(name) > 256 {
		return fail("pool", "Pool name must be 256 characters or less")
	}
	if !poolNameRe.MatchString(name) {
		return fail("pool", "Pool name must start with letter and contain only letters, numbers, _, ., -")
	}
	if slices.Contains(reservedPoolNames, name) {
		return fail("pool", "Pool name '%s' is reserved by ZFS", name)
	}
	return nil
}

func Password(password string) error {
	if password == "" {
		return fail("password", "Password cannot be empty")
	}
	if len(password) < 8 {
		return fail("password", "Password must be at least 8 characters")
	}
	return nil
}

// PasswordConfirm validates the password and that the confirmation matches
// it exactly.
func PasswordConfirm(password, confirm string) error {
	if err := Password(password); err != nil {
		return err
	}
	if password != confirm {
		return fail("password", "Passwords do not match")
	}
	return nil
}

func Mountpoint(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fail("mountpoint", "Mountpoint must be an absolute path")
	}
	if strings.ContainsAny(path, " \t\n") {
		return fail("mountpoint", "Mountpoint cannot contain whitespace")
	}
	return nil
}

// PackageName accepts a nixpkgs attribute name or dotted attribute path.
func PackageName(name string) error {
	if name == "" {
		return fail("package", "Package name cannot be empty")
	}
	if !packageRe.MatchString(name) {
		return fail("package", "Package '%s' is not a valid nixpkgs attribute", name)
	}
	return nil
}

// StateVersion checks a NixOS release string such as "24.11".
func StateVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fail("stateVersion", "State version '%s' is not a NixOS release", version)
	}
	c, err := semver.NewConstraint(minimumStateVersion)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fail("stateVersion", "State version %s is older than the supported minimum (%s)", version, minimumStateVersion)
	}
	return nil
}

// NotEmpty rejects blank input.
func NotEmpty(field string) Func {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fail(field, "%s cannot be empty", field)
		}
		return nil
	}
}

// SplitList splits a comma or space separated list and drops blanks.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
