package wizard

import (
	"testing"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func online() system.NetworkFacts {
	return system.NetworkFacts{
		Online:    true,
		Interface: nixos.Some("enp3s0"),
		Address:   nixos.Some("10.0.0.5"),
		DNS:       []string{"1.1.1.1"},
	}
}

func newSession(t *testing.T, facts system.NetworkFacts) *Session {
	t.Helper()
	cfg := nixos.NewInstallConfig()
	system.ApplyNetwork(cfg, facts)
	return NewSession(cfg, Options{
		Disks: []system.Disk{
			{Device: "/dev/nvme0n1", Size: "1.82 TB", Model: "Samsung"},
			{Device: "/dev/sda", Size: "500 GB", Model: "Crucial"},
		},
		CheckNetwork: online,
		PasswordCost: bcrypt.MinCost,
	})
}

func send(s *Session, events ...Event) State {
	var st State
	for _, ev := range events {
		st = s.HandleEvent(ev)
	}
	return st
}

func typeText(s *Session, text string) State {
	var st State
	for _, r := range text {
		st = s.HandleEvent(Rune(r))
	}
	return st
}

// moveTo puts the cursor on the first field with label.
func moveTo(t *testing.T, s *Session, label string) {
	t.Helper()
	st := s.State()
	for i, f := range st.Fields {
		if f.Label == label {
			for st.Cursor > i {
				st = s.HandleEvent(Key(EventUp))
			}
			for st.Cursor < i {
				st = s.HandleEvent(Key(EventDown))
			}
			return
		}
	}
	t.Fatalf("no field %q on phase %s", label, st.Phase)
}

func edit(t *testing.T, s *Session, label, value string) State {
	t.Helper()
	moveTo(t, s, label)
	st := s.HandleEvent(Key(EventSelect))
	require.True(t, st.Editing)
	for range st.Buffer {
		s.HandleEvent(Key(EventBackspace))
	}
	typeText(s, value)
	return s.HandleEvent(Key(EventConfirm))
}

func fieldValue(st State, label string) (Field, bool) {
	for _, f := range st.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return Field{}, false
}

func TestOfflineNetworkBlocksNext(t *testing.T) {
	s := newSession(t, system.NetworkFacts{})
	st := send(s, Key(EventNext))

	assert.Equal(t, nixos.PhaseNetwork, st.Phase)
	assert.Equal(t, "Network must be online to continue", st.Message)
	assert.False(t, st.CanBack)

	st = send(s, Rune('c'))
	assert.True(t, s.Config().Network.Validated)
	f, _ := fieldValue(st, "IP Address")
	assert.Equal(t, "10.0.0.5", f.Value)

	st = send(s, Key(EventNext))
	assert.Equal(t, nixos.PhaseUser, st.Phase)
	assert.Empty(t, st.Message)
}

func TestUserEditingValidates(t *testing.T) {
	s := newSession(t, online())
	send(s, Key(EventNext))

	st := edit(t, s, "Username", "root")
	assert.True(t, st.Editing, "rejected input keeps the editor open")
	assert.Contains(t, st.Message, "reserved")
	send(s, Key(EventCancel))
	assert.Equal(t, StatusRunning, s.Status(), "cancel while editing only closes the editor")

	st = edit(t, s, "Username", "julas")
	assert.False(t, st.Editing)
	assert.Equal(t, "julas", s.Config().User.Username)

	st = send(s, Key(EventNext))
	assert.Equal(t, "Full name is required", st.Message)

	edit(t, s, "Full Name", "Julas")
	st = edit(t, s, "UID", "999")
	assert.Contains(t, st.Message, "1000 or greater")
	send(s, Key(EventCancel))
	assert.Equal(t, 1000, s.Config().User.UID)

	edit(t, s, "Groups", "wheel, docker audio")
	assert.Equal(t, []string{"wheel", "docker", "audio"}, s.Config().User.Groups)

	moveTo(t, s, "Sudoer")
	st = send(s, Key(EventSelect))
	_, ok := fieldValue(st, "No Password")
	assert.False(t, ok, "nopasswd only applies to sudoers")

	st = edit(t, s, "Root Password", "hunter22")
	require.True(t, st.Editing)
	st = typeText(s, "hunter22")
	st = send(s, Key(EventConfirm))
	assert.False(t, st.Editing)
	f, _ := fieldValue(st, "Root Password")
	assert.Equal(t, "SET", f.Value)
	assert.True(t, f.Masked)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(s.Secrets().RootPasswordHash), []byte("hunter22")))

	st = send(s, Key(EventNext))
	assert.Equal(t, nixos.PhaseStorage, st.Phase)
	assert.True(t, s.Config().User.Validated)
}

func TestRootPasswordMismatch(t *testing.T) {
	s := newSession(t, online())
	send(s, Key(EventNext))

	st := edit(t, s, "Root Password", "hunter22")
	require.True(t, st.Editing)
	_, ok := fieldValue(st, "Confirm Root Password")
	require.True(t, ok)

	typeText(s, "hunter23")
	st = send(s, Key(EventConfirm))
	assert.True(t, st.Editing)
	assert.Equal(t, "Passwords do not match", st.Message)
	assert.Equal(t, "hunter23", st.Buffer)
	assert.False(t, s.Config().User.RootPasswordSet)
	assert.Empty(t, s.Secrets().RootPasswordHash)

	// Cancelling drops the first entry.
	st = send(s, Key(EventCancel))
	assert.False(t, st.Editing)
	_, ok = fieldValue(st, "Root Password")
	assert.True(t, ok)
	f, _ := fieldValue(st, "Root Password")
	assert.Equal(t, "NOT SET", f.Value)

	st = edit(t, s, "Root Password", "short")
	assert.Equal(t, "Password must be at least 8 characters", st.Message)
	_, ok = fieldValue(st, "Confirm Root Password")
	assert.False(t, ok)
}

func TestStorageDiskSelection(t *testing.T) {
	s := newSession(t, online())
	s.Config().User.FullName = "Julas"
	send(s, Key(EventNext), Key(EventNext))

	st := send(s, Key(EventNext))
	assert.Equal(t, "At least one disk must be configured", st.Message)

	moveTo(t, s, "/dev/sda - 500 GB - Crucial")
	st = send(s, Key(EventSelect))
	require.Len(t, s.Config().Storage.Disks, 1)
	f, _ := fieldValue(st, "Device")
	assert.Equal(t, "/dev/sda", f.Value)

	moveTo(t, s, "LVM")
	st = send(s, Key(EventSelect))
	_, ok := fieldValue(st, "VG Name")
	assert.True(t, ok)

	moveTo(t, s, "ZFS")
	send(s, Key(EventSelect))
	assert.True(t, s.Config().Storage.Disks[0].ZFS)

	moveTo(t, s, "LVM")
	send(s, Key(EventSelect))
	assert.False(t, s.Config().Storage.Disks[0].ZFS, "disabling LVM forces ZFS off")

	moveTo(t, s, "Filesystem")
	send(s, Key(EventSelect))
	assert.Equal(t, "btrfs", s.Config().Storage.Disks[0].Filesystem)

	edit(t, s, "Mountpoint", "/data")
	st = send(s, Key(EventNext))
	assert.Equal(t, "Root (/) mountpoint is required", st.Message)
	edit(t, s, "Mountpoint", "/")

	st = send(s, Rune('d'))
	assert.Empty(t, s.Config().Storage.Disks)
	assert.Equal(t, "Available Disks", st.Fields[0].Label)
}

func TestEnvironmentChoices(t *testing.T) {
	s := newSession(t, online())
	s.Config().CurrentPhase = nixos.PhaseEnvironment

	moveTo(t, s, "text")
	st := send(s, Key(EventSelect))
	assert.Equal(t, nixos.DisplayText, s.Config().Environment.Server)
	assert.Equal(t, nixos.DesktopNone, s.Config().Environment.Desktop)
	none, ok := fieldValue(st, nixos.DesktopNone)
	require.True(t, ok)
	assert.True(t, none.Selected)

	moveTo(t, s, "xorg")
	send(s, Key(EventSelect))
	st = send(s, Key(EventNext))
	assert.Equal(t, "Desktop environment is required", st.Message)

	moveTo(t, s, "xfce")
	send(s, Key(EventSelect))
	assert.Equal(t, []string{"firefox", "xfce4-terminal", "thunar"}, s.Config().Desktop.Stack)
	st = send(s, Key(EventNext))
	assert.Equal(t, nixos.PhaseDesktop, st.Phase)
}

func TestDesktopAddPackage(t *testing.T) {
	s := newSession(t, online())
	s.Config().CurrentPhase = nixos.PhaseDesktop

	st := send(s, Rune('a'))
	require.True(t, st.Editing)
	typeText(s, "vscode")
	st = send(s, Key(EventConfirm))
	assert.False(t, st.Editing)
	assert.Equal(t, []string{"vscode"}, s.Config().Desktop.CustomPackages)

	send(s, Rune('a'))
	typeText(s, "bad name!")
	st = send(s, Key(EventConfirm))
	assert.True(t, st.Editing)
	assert.NotEmpty(t, st.Message)
}

func TestFinishOnlyWhenComplete(t *testing.T) {
	s := newSession(t, online())
	cfg := s.Config()

	st := send(s, Key(EventFinish))
	assert.Equal(t, "Finish is only available on the review phase", st.Message)

	cfg.CurrentPhase = nixos.PhaseDesktop
	st = send(s, Key(EventNext))
	assert.Equal(t, nixos.PhaseReview, st.Phase, "the desktop phase always advances")
	assert.False(t, st.CanFinish)
	assert.False(t, st.CanNext)

	st = send(s, Key(EventFinish))
	assert.Equal(t, "Complete all phases to continue", st.Message)
	assert.Equal(t, StatusRunning, st.Status)

	cfg.User.Validated = true
	cfg.Storage.Disks = []nixos.DiskConfig{nixos.NewDiskConfig("/dev/sda", "500 GB", "Crucial")}
	cfg.Storage.Validated = true
	cfg.Environment.Validated = true
	st = s.State()
	assert.True(t, st.CanFinish)
	rev, ok := fieldValue(st, "Disk")
	require.True(t, ok)
	assert.Equal(t, "✓", rev.Value)

	st = send(s, Key(EventFinish))
	assert.Equal(t, StatusCompleted, st.Status)
	assert.Equal(t, nixos.OutcomeCompleted, st.Status.Outcome())

	st = send(s, Key(EventBack))
	assert.Equal(t, nixos.PhaseReview, st.Phase, "finished sessions ignore input")
}

func TestNetworkLossWithdrawsValidation(t *testing.T) {
	cfg := nixos.NewInstallConfig()
	system.ApplyNetwork(cfg, online())
	s := NewSession(cfg, Options{CheckNetwork: func() system.NetworkFacts { return system.NetworkFacts{} }})
	require.True(t, cfg.Network.Validated)

	st := send(s, Key(EventRefresh))
	assert.Equal(t, "Network must be online to continue", st.Message)
	assert.False(t, cfg.Network.Validated)
	f, _ := fieldValue(st, "Status")
	assert.Equal(t, "OFFLINE", f.Value)
}

func TestCancelDiscards(t *testing.T) {
	s := newSession(t, online())
	st := send(s, Key(EventCancel))
	assert.Equal(t, StatusCancelled, st.Status)
	assert.Equal(t, 2, st.Status.Outcome().ExitCode())
}

func TestBackKeepsValidation(t *testing.T) {
	s := newSession(t, online())
	send(s, Key(EventNext))
	st := send(s, Key(EventBack))
	assert.Equal(t, nixos.PhaseNetwork, st.Phase)
	assert.True(t, s.Config().Network.Validated)

	st = send(s, Key(EventBack))
	assert.Equal(t, nixos.ErrFirstPhase.Error(), st.Message)
}

func TestCursorBounds(t *testing.T) {
	s := newSession(t, online())
	st := send(s, Key(EventUp))
	assert.Equal(t, 0, st.Cursor)
	for i := 0; i < 20; i++ {
		st = send(s, Key(EventDown))
	}
	assert.Equal(t, len(st.Fields)-1, st.Cursor)
}
