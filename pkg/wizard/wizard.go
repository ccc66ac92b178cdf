// Package wizard is the multi-phase installer session. A Session owns one
// InstallConfig and moves through the phases in response to discrete input
// events; front-ends only translate keys into events and draw the returned
// State.
package wizard

import (
	"errors"
	"io"
	"unicode/utf8"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/system"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type EventKind int

const (
	EventUp EventKind = iota
	EventDown
	// EventSelect activates the field under the cursor, or commits the
	// edit in progress.
	EventSelect
	EventConfirm
	// EventCancel discards the edit in progress, or aborts the session.
	EventCancel
	EventNext
	EventBack
	EventFinish
	EventRune
	EventBackspace
	// EventRefresh re-runs the network check.
	EventRefresh
)

type Event struct {
	Kind EventKind
	Rune rune
}

func Key(kind EventKind) Event { return Event{Kind: kind} }

func Rune(r rune) Event { return Event{Kind: EventRune, Rune: r} }

type Status int

const (
	StatusRunning Status = iota
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "running"
}

// Outcome maps a finished session to the host outcome.
func (s Status) Outcome() nixos.Outcome {
	switch s {
	case StatusCompleted:
		return nixos.OutcomeCompleted
	case StatusCancelled:
		return nixos.OutcomeCancelled
	}
	return nixos.OutcomeFailed
}

// State is what a front-end needs to draw one frame.
type State struct {
	Phase     nixos.Phase
	Status    Status
	Fields    []Field
	Cursor    int
	Editing   bool
	Buffer    string
	Message   string
	CanBack   bool
	CanNext   bool
	CanFinish bool
}

// NetworkChecker re-probes connectivity. It must not block longer than the
// probe timeout.
type NetworkChecker func() system.NetworkFacts

type Options struct {
	// Disks offered on the storage phase while no disk is configured.
	Disks        []system.Disk
	CheckNetwork NetworkChecker
	Log          logrus.FieldLogger
	// PasswordCost is the bcrypt cost for the root password hash. Zero
	// means bcrypt.DefaultCost.
	PasswordCost int
}

// Secrets are the values collected by the session that never enter the
// InstallConfig or its snapshot.
type Secrets struct {
	// RootPasswordHash is a bcrypt hash, empty until the root password has
	// been entered and confirmed in this session.
	RootPasswordHash string
}

// Session is not safe for concurrent use. Each SSH connection gets its own.
type Session struct {
	cfg     *nixos.InstallConfig
	machine *nixos.PhaseMachine
	disks   []system.Disk
	check   NetworkChecker
	log     logrus.FieldLogger
	cost    int
	secrets Secrets

	// pendingPassword holds the first root password entry until it is
	// confirmed.
	pendingPassword string

	status  Status
	cursor  int
	editing bool
	buffer  string
	message string
}

func NewSession(cfg *nixos.InstallConfig, opts Options) *Session {
	cost := opts.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if !cfg.CurrentPhase.Valid() {
		cfg.CurrentPhase = nixos.PhaseNetwork
	}
	s := &Session{
		cfg:     cfg,
		machine: nixos.NewPhaseMachine(cfg),
		disks:   opts.Disks,
		check:   opts.CheckNetwork,
		log:     log,
		cost:    cost,
	}
	_ = s.machine.NetworkChecked()
	return s
}

func (s *Session) Config() *nixos.InstallConfig { return s.cfg }

func (s *Session) Status() Status { return s.status }

func (s *Session) Secrets() Secrets { return s.secrets }

// HandleEvent applies one input event and returns the resulting state.
// Events after the session has finished are ignored.
func (s *Session) HandleEvent(ev Event) State {
	if s.status != StatusRunning {
		return s.State()
	}
	s.message = ""
	if s.editing {
		s.handleEdit(ev)
	} else {
		s.handleNav(ev)
	}
	return s.State()
}

func (s *Session) handleEdit(ev Event) {
	switch ev.Kind {
	case EventRune:
		s.buffer += string(ev.Rune)
	case EventBackspace:
		if s.buffer != "" {
			_, size := utf8.DecodeLastRuneInString(s.buffer)
			s.buffer = s.buffer[:len(s.buffer)-size]
		}
	case EventSelect, EventConfirm:
		s.commit()
	case EventCancel:
		s.editing = false
		s.buffer = ""
		s.pendingPassword = ""
	}
}

func (s *Session) commit() {
	fields := s.fields()
	if s.cursor >= len(fields) || fields[s.cursor].commit == nil {
		s.editing = false
		return
	}
	f := fields[s.cursor]
	if err := f.commit(s.buffer); err != nil {
		s.message = nixos.Reason(err)
		return
	}
	if s.pendingPassword != "" {
		s.buffer = ""
		return
	}
	s.log.WithField("phase", s.cfg.CurrentPhase).Debugf("%s updated", f.Label)
	s.editing = false
	s.buffer = ""
	s.clampCursor()
}

func (s *Session) handleNav(ev Event) {
	switch ev.Kind {
	case EventUp:
		if s.cursor > 0 {
			s.cursor--
		}
	case EventDown:
		if s.cursor < len(s.fields())-1 {
			s.cursor++
		}
	case EventSelect, EventConfirm:
		s.activate()
	case EventCancel:
		s.log.WithField("phase", s.cfg.CurrentPhase).Info("installation aborted")
		s.status = StatusCancelled
	case EventNext:
		s.next()
	case EventBack:
		if err := s.machine.Retreat(); err != nil {
			s.message = err.Error()
			return
		}
		s.cursor = 0
	case EventFinish:
		s.finish()
	case EventRefresh:
		s.refreshNetwork()
	case EventRune:
		s.shortcut(ev.Rune)
	}
}

func (s *Session) next() {
	from := s.cfg.CurrentPhase
	err := s.machine.Advance()
	switch {
	case errors.Is(err, nixos.ErrLastPhase):
		s.message = "Review is the last phase"
		return
	case err != nil:
		s.message = nixos.Reason(err)
		return
	}
	s.log.WithFields(logrus.Fields{"from": from, "to": s.cfg.CurrentPhase}).Debug("phase advanced")
	s.cursor = 0
}

func (s *Session) finish() {
	if s.cfg.CurrentPhase != nixos.PhaseReview {
		s.message = "Finish is only available on the review phase"
		return
	}
	if err := s.machine.ValidatePhase(nixos.PhaseReview); err != nil {
		s.message = nixos.Reason(err)
		return
	}
	s.log.Info("installation configuration complete")
	s.status = StatusCompleted
}

func (s *Session) activate() {
	fields := s.fields()
	if s.cursor >= len(fields) {
		return
	}
	f := fields[s.cursor]
	switch {
	case f.commit != nil:
		s.editing = true
		s.buffer = f.Value
		if f.Masked {
			s.buffer = ""
		}
	case f.activate != nil:
		if err := f.activate(); err != nil {
			s.message = nixos.Reason(err)
		}
		s.clampCursor()
	}
}

func (s *Session) shortcut(r rune) {
	switch {
	case r == 'c' && s.cfg.CurrentPhase == nixos.PhaseNetwork:
		s.refreshNetwork()
	case r == 'd' && s.cfg.CurrentPhase == nixos.PhaseStorage:
		s.clearDisks()
	case r == 'a' && s.cfg.CurrentPhase == nixos.PhaseDesktop:
		fields := s.fields()
		s.cursor = len(fields) - 1
		s.activate()
	}
}

func (s *Session) refreshNetwork() {
	if s.check == nil {
		s.message = "Network check unavailable"
		return
	}
	s.cfg.Network.Status = nixos.NetworkChecking
	system.ApplyNetwork(s.cfg, s.check())
	if err := s.machine.NetworkChecked(); err != nil {
		s.message = nixos.Reason(err)
	}
	s.log.WithField("status", s.cfg.Network.Status).Info("network re-checked")
}

func (s *Session) clearDisks() {
	s.cfg.Storage.Disks = []nixos.DiskConfig{}
	s.cursor = 0
}

func (s *Session) clampCursor() {
	n := len(s.fields())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// State returns the current frame without changing anything.
func (s *Session) State() State {
	fields := s.fields()
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Field
	}
	phase := s.cfg.CurrentPhase
	return State{
		Phase:     phase,
		Status:    s.status,
		Fields:    out,
		Cursor:    s.cursor,
		Editing:   s.editing,
		Buffer:    s.buffer,
		Message:   s.message,
		CanBack:   phase > nixos.PhaseNetwork,
		CanNext:   phase < nixos.PhaseReview,
		CanFinish: phase == nixos.PhaseReview && s.cfg.IsComplete(),
	}
}
