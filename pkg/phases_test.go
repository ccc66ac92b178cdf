package nixos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test helpers
// ============================================================================

func readyConfig() *InstallConfig {
	cfg := NewInstallConfig()
	cfg.Network.Status = NetworkOnline
	cfg.User.Username = "julas"
	cfg.User.FullName = "Julas"
	cfg.Storage.Disks = append(cfg.Storage.Disks, NewDiskConfig("/dev/sda", "500G", "Samsung"))
	cfg.SetDesktop("gnome")
	return cfg
}

func validateAll(t *testing.T, m *PhaseMachine) {
	t.Helper()
	for _, p := range []Phase{PhaseNetwork, PhaseUser, PhaseStorage, PhaseEnvironment, PhaseDesktop} {
		require.NoError(t, m.ValidatePhase(p), "phase %s", p)
	}
}

// ============================================================================
// Test Suite: Phase predicates
// ============================================================================

func TestValidatePhaseNetworkRequiresOnline(t *testing.T) {
	cfg := NewInstallConfig()
	m := NewPhaseMachine(cfg)

	err := m.ValidatePhase(PhaseNetwork)
	require.Error(t, err)
	assert.Equal(t, "Network must be online to continue", Reason(err))
	assert.False(t, cfg.Network.Validated)

	cfg.Network.Status = NetworkOnline
	require.NoError(t, m.ValidatePhase(PhaseNetwork))
	assert.True(t, cfg.Network.Validated)
}

func TestNetworkCheckedTracksConnectivity(t *testing.T) {
	cfg := NewInstallConfig()
	m := NewPhaseMachine(cfg)

	cfg.Network.Status = NetworkOnline
	require.NoError(t, m.NetworkChecked())
	assert.True(t, cfg.Network.Validated)

	cfg.Network.Status = NetworkOffline
	err := m.NetworkChecked()
	assert.Equal(t, "Network must be online to continue", Reason(err))
	assert.False(t, cfg.Network.Validated)
	assert.False(t, cfg.IsComplete())

	// Other predicates keep their flags on failure.
	cfg.User.Validated = true
	require.Error(t, m.ValidatePhase(PhaseUser))
	assert.True(t, cfg.User.Validated)
}

func TestValidatePhaseUser(t *testing.T) {
	cfg := NewInstallConfig()
	m := NewPhaseMachine(cfg)

	cfg.User.Username = "ab"
	cfg.User.FullName = "Someone"
	assert.Error(t, m.ValidatePhase(PhaseUser))

	cfg.User.Username = "abc"
	cfg.User.FullName = ""
	assert.Error(t, m.ValidatePhase(PhaseUser))
	assert.False(t, cfg.User.Validated)

	cfg.User.FullName = "A B C"
	require.NoError(t, m.ValidatePhase(PhaseUser))
	assert.True(t, cfg.User.Validated)
}

func TestValidatePhaseStorageNeedsRootMount(t *testing.T) {
	cfg := NewInstallConfig()
	m := NewPhaseMachine(cfg)

	assert.Error(t, m.ValidatePhase(PhaseStorage))

	disk := NewDiskConfig("/dev/sdb", "1T", "WD")
	disk.Mountpoint = "/data"
	cfg.Storage.Disks = append(cfg.Storage.Disks, disk)
	err := m.ValidatePhase(PhaseStorage)
	require.Error(t, err)
	assert.Equal(t, "Root (/) mountpoint is required", Reason(err))

	cfg.Storage.Disks = append(cfg.Storage.Disks, NewDiskConfig("/dev/sda", "500G", "Samsung"))
	require.NoError(t, m.ValidatePhase(PhaseStorage))
	assert.True(t, cfg.Storage.Validated)
}

func TestValidatePhaseEnvironment(t *testing.T) {
	cfg := NewInstallConfig()
	m := NewPhaseMachine(cfg)

	cfg.SetDisplayServer(DisplayXorg)
	assert.Equal(t, "", cfg.Environment.Desktop)
	assert.Error(t, m.ValidatePhase(PhaseEnvironment))

	cfg.SetDisplayServer(DisplayText)
	assert.Equal(t, DesktopNone, cfg.Environment.Desktop)
	require.NoError(t, m.ValidatePhase(PhaseEnvironment))

	cfg.Environment.Desktop = "gnome"
	assert.Error(t, m.ValidatePhase(PhaseEnvironment))
}

func TestValidatedFlagSurvivesLaterEdits(t *testing.T) {
	cfg := readyConfig()
	m := NewPhaseMachine(cfg)
	require.NoError(t, m.ValidatePhase(PhaseUser))

	cfg.User.FullName = ""
	assert.True(t, cfg.User.Validated)
	assert.Error(t, m.ValidatePhase(PhaseUser))
	assert.True(t, cfg.User.Validated)
}

// ============================================================================
// Test Suite: Transitions
// ============================================================================

func TestAdvanceBlockedByFailingEarlyPhases(t *testing.T) {
	for _, p := range []Phase{PhaseNetwork, PhaseUser, PhaseStorage, PhaseEnvironment} {
		cfg := NewInstallConfig()
		cfg.Environment.Desktop = ""
		cfg.CurrentPhase = p
		m := NewPhaseMachine(cfg)

		err := m.Advance()
		require.Error(t, err, "phase %s", p)
		assert.Equal(t, p, cfg.CurrentPhase, "phase %s", p)
	}
}

func TestAdvanceLenientFromDesktop(t *testing.T) {
	cfg := NewInstallConfig()
	cfg.CurrentPhase = PhaseDesktop
	m := NewPhaseMachine(cfg)

	require.NoError(t, m.Advance())
	assert.Equal(t, PhaseReview, cfg.CurrentPhase)

	assert.ErrorIs(t, m.Advance(), ErrLastPhase)
	assert.Equal(t, PhaseReview, cfg.CurrentPhase)
}

func TestAdvanceThroughAllPhases(t *testing.T) {
	cfg := readyConfig()
	m := NewPhaseMachine(cfg)

	for cfg.CurrentPhase < PhaseReview {
		require.NoError(t, m.Advance(), "phase %s", cfg.CurrentPhase)
	}
	assert.True(t, m.IsComplete())
}

func TestRetreat(t *testing.T) {
	cfg := readyConfig()
	m := NewPhaseMachine(cfg)

	assert.ErrorIs(t, m.Retreat(), ErrFirstPhase)

	require.NoError(t, m.Advance())
	require.NoError(t, m.Advance())
	require.NoError(t, m.Retreat())
	assert.Equal(t, PhaseUser, cfg.CurrentPhase)
	assert.True(t, cfg.User.Validated)
	assert.True(t, cfg.Network.Validated)
}

// ============================================================================
// Test Suite: Completeness
// ============================================================================

func TestIsCompleteBothDirections(t *testing.T) {
	cfg := readyConfig()
	m := NewPhaseMachine(cfg)

	for _, p := range []Phase{PhaseNetwork, PhaseUser, PhaseStorage, PhaseEnvironment} {
		require.NoError(t, m.ValidatePhase(p))
	}
	assert.False(t, m.IsComplete())
	assert.Error(t, m.ValidatePhase(PhaseReview))

	require.NoError(t, m.ValidatePhase(PhaseDesktop))
	assert.True(t, m.IsComplete())
	assert.True(t, cfg.PhaseValidated(PhaseReview))
}

func TestIsCompleteRequiresDisks(t *testing.T) {
	cfg := readyConfig()
	m := NewPhaseMachine(cfg)
	validateAll(t, m)
	require.True(t, m.IsComplete())

	cfg.Storage.Disks = nil
	assert.False(t, m.IsComplete())
}

func TestOutcomeExitCodes(t *testing.T) {
	assert.Equal(t, 0, OutcomeOf(nil).ExitCode())
	assert.Equal(t, 2, OutcomeOf(ErrCancelled).ExitCode())
	assert.Equal(t, 1, OutcomeOf(&SerializationError{Op: "write", Path: "/x", Err: ErrLastPhase}).ExitCode())
}
