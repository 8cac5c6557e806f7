// Package authsync maintains the single source of truth for "who is the
// current user". It reconciles the local {user, loading} cell from several
// asynchronous signal sources — the initial bootstrap, push events from the
// auth service, a periodic fallback ticker, visibility changes, and explicit
// UI operations — without ever publishing a partially-built snapshot.
//
// All reconciliation paths post fully-formed proposals into one inbox; a
// single goroutine applies them. Each reconciliation attempt carries a
// monotonic id and a proposal is only applied while its id is still the
// newest issued, so a slow backend response can never clobber a newer
// snapshot. Sign-out proposals skip the check and apply unconditionally.
package authsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/recipebox/recipebox/internal/authapi"
	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/logging"
	"github.com/recipebox/recipebox/internal/models"
)

// ProfileStore is the subset of the profile repository the synchronizer
// needs: point lookup and lazy creation.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Insert(ctx context.Context, p *models.Profile) error
}

// Options carry the timing knobs. Zero values fall back to the defaults
// below.
type Options struct {
	// BootstrapTimeout bounds the initial session fetch; loading is forced
	// false once it elapses even if the backend never answers.
	BootstrapTimeout time.Duration
	// ProfileFetchTimeout bounds a single profile fetch during
	// reconciliation before the placeholder is substituted.
	ProfileFetchTimeout time.Duration
	// ReconcileInterval is the period of the fallback reconcile ticker.
	ReconcileInterval time.Duration
	// VisibilityDebounce delays a visibility-triggered reconcile so it does
	// not race a push event that usually arrives at the same moment.
	VisibilityDebounce time.Duration
	// SiteBaseURL is used to build the e-mail confirmation callback link.
	SiteBaseURL string
}

const (
	defaultBootstrapTimeout    = 10 * time.Second
	defaultProfileFetchTimeout = 5 * time.Second
	defaultReconcileInterval   = 30 * time.Second
	defaultVisibilityDebounce  = 1 * time.Second
)

func (o Options) withDefaults() Options {
	if o.BootstrapTimeout <= 0 {
		o.BootstrapTimeout = defaultBootstrapTimeout
	}
	if o.ProfileFetchTimeout <= 0 {
		o.ProfileFetchTimeout = defaultProfileFetchTimeout
	}
	if o.ReconcileInterval <= 0 {
		o.ReconcileInterval = defaultReconcileInterval
	}
	if o.VisibilityDebounce <= 0 {
		o.VisibilityDebounce = defaultVisibilityDebounce
	}
	return o
}

// proposal is one fully-formed state change posted to the apply loop.
// attempt == 0 marks an unconditional proposal: sign-out (touchUser with a
// nil user) wins over any in-flight reconciliation, and the zero proposal
// only settles loading. Applying a proposal always settles loading to false.
type proposal struct {
	attempt   uint64
	user      *AuthUser
	touchUser bool
	force     bool
}

// Synchronizer owns the {user, loading} cell. Construct with New, wire with
// Start, tear down with Close.
type Synchronizer struct {
	backend  authapi.Client
	profiles ProfileStore
	logger   logging.Logger
	opts     Options

	mu          sync.RWMutex
	state       State
	watchers    map[int]chan State
	nextWatcher int

	attempt   atomic.Uint64
	proposals chan proposal
	visible   chan struct{}

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

func New(backend authapi.Client, profiles ProfileStore, logger logging.Logger, opts Options) *Synchronizer {
	return &Synchronizer{
		backend:   backend,
		profiles:  profiles,
		logger:    logger.With("component", "authsync"),
		opts:      opts.withDefaults(),
		state:     State{Loading: true},
		watchers:  make(map[int]chan State),
		proposals: make(chan proposal, 16),
		visible:   make(chan struct{}, 1),
	}
}

// Start launches the apply loop and the fallback ticker, subscribes to the
// auth service's push events, and kicks off the bootstrap. It returns
// immediately; consumers observe progress through the state cell.
func (s *Synchronizer) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = s.backend.OnAuthStateChange(s.handleEvent)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.applyLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.tickerLoop()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.bootstrap()
	}()
}

// Close releases the timers and the event subscription and waits for
// in-flight loops to stop. The state cell is left as-is.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
	})
}

// State returns the current cell value.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a watcher that receives the state after each change.
// The channel holds only the latest value: a slow consumer sees the newest
// state, not a backlog. The returned function unsubscribes.
func (s *Synchronizer) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// NotifyVisible signals that the UI became visible again; a debounced
// reconcile follows. Safe to call from any goroutine, never blocks.
func (s *Synchronizer) NotifyVisible() {
	select {
	case s.visible <- struct{}{}:
	default:
	}
}

// SignIn authenticates with the auth service. On success the snapshot is
// reconciled the same way a SIGNED_IN push event is; on failure the error is
// returned to the caller and loading is cleared, with the held user left
// untouched.
func (s *Synchronizer) SignIn(ctx context.Context, email, password string) error {
	s.setLoading(true)

	sess, err := s.backend.SignInWithPassword(ctx, authapi.Credentials{Email: email, Password: password})
	if err != nil {
		// Settle loading without invalidating any in-flight reconciliation.
		s.propose(proposal{})
		return err
	}

	att := s.attempt.Add(1)
	user := s.buildSnapshot(ctx, sess.User)
	s.propose(proposal{attempt: att, user: user, touchUser: true})
	return nil
}

// SignUp registers a new identity, asking the service to route the
// confirmation link back to <site-base>/auth/confirm, and separately
// attempts to create the profile record. Identity creation and profile
// creation are two systems: a failed profile insert never fails the
// sign-up, the record is lazily created during a later reconciliation.
func (s *Synchronizer) SignUp(ctx context.Context, email, password, username, fullName string) error {
	sess, err := s.backend.SignUp(ctx, authapi.SignUpParams{
		Email:    email,
		Password: password,
		Metadata: map[string]any{
			"username":  username,
			"full_name": fullName,
		},
		EmailRedirectTo: s.opts.SiteBaseURL + "/auth/confirm",
	})
	if err != nil {
		return err
	}

	// Without a session (confirmation pending) there is no user id to key
	// the profile on yet; the first reconciliation after confirmation
	// creates it.
	if sess == nil || sess.User == nil {
		return nil
	}

	prof := placeholderProfile(sess.User)
	if err := s.profiles.Insert(ctx, prof); err != nil {
		s.logger.Warn(ctx, "profile creation failed, will retry lazily", "user_id", sess.User.ID, "error", err)
	}

	att := s.attempt.Add(1)
	user := s.buildSnapshot(ctx, sess.User)
	s.propose(proposal{attempt: att, user: user, touchUser: true})
	return nil
}

// SignOut revokes the session. Whatever the backend says, the local cell
// ends at {user: nil, loading: false}: being signed out locally must not
// depend on network success.
func (s *Synchronizer) SignOut(ctx context.Context) error {
	err := s.backend.SignOut(ctx)

	// Invalidate in-flight reconciliations, then clear unconditionally.
	s.attempt.Add(1)
	s.propose(proposal{user: nil, touchUser: true})
	return err
}

// Refresh is the explicit manual re-reconciliation exposed to the UI, e.g.
// after a profile edit. Unlike the fallback reconcile it always replaces the
// snapshot on success.
func (s *Synchronizer) Refresh(ctx context.Context) {
	s.setLoading(true)
	s.reconcileOnce(ctx, true)
}

// Reconcile is the fallback re-check used by the ticker and visibility
// paths. It fetches identity and profile, and only touches the cell when
// something actually changed. Errors never clear a held user: backend
// unavailability means "unknown", not "signed out".
func (s *Synchronizer) Reconcile(ctx context.Context) {
	s.reconcileOnce(ctx, false)
}

func (s *Synchronizer) reconcileOnce(ctx context.Context, force bool) {
	att := s.attempt.Add(1)

	identity, err := s.backend.GetUser(ctx)
	if err != nil {
		s.logger.Debug(ctx, "reconcile skipped, backend unavailable", "error", err)
		s.propose(proposal{})
		return
	}
	if identity == nil {
		// Determined: no session. This is a real sign-out signal, not an
		// error, so clearing is correct.
		s.propose(proposal{attempt: att, user: nil, touchUser: true})
		return
	}

	user := s.buildSnapshot(ctx, identity)
	s.propose(proposal{attempt: att, user: user, touchUser: true, force: force})
}

// bootstrap performs the initial session fetch with a bounded wait. When the
// ceiling elapses the cell settles at whatever it held (typically no user)
// with loading false — a slow backend may briefly present "not
// authenticated" to an authenticated user, which is the accepted trade-off
// for never hanging the UI.
func (s *Synchronizer) bootstrap() {
	att := s.attempt.Add(1)
	s.setLoading(true)

	type result struct {
		sess *authapi.Session
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		sess, err := s.backend.GetSession(s.ctx)
		ch <- result{sess: sess, err: err}
	}()

	timer := time.NewTimer(s.opts.BootstrapTimeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			s.logger.Warn(s.ctx, "bootstrap session fetch failed", "error", r.err)
			s.propose(proposal{})
			return
		}
		if r.sess == nil || r.sess.User == nil {
			s.propose(proposal{attempt: att, user: nil, touchUser: true})
			return
		}
		user := s.buildSnapshot(s.ctx, r.sess.User)
		s.propose(proposal{attempt: att, user: user, touchUser: true})
	case <-timer.C:
		s.logger.Warn(s.ctx, "bootstrap timed out, presenting unauthenticated state")
		s.propose(proposal{})
	case <-s.ctx.Done():
	}
}

// handleEvent is the push-subscription callback. Reconciliation work runs in
// its own goroutine so a slow profile fetch never blocks the event source.
func (s *Synchronizer) handleEvent(ev authapi.Event) {
	switch ev.Kind {
	case authapi.EventSignedOut:
		// Sign-out wins over any in-flight reconciliation regardless of
		// arrival order.
		s.attempt.Add(1)
		s.propose(proposal{user: nil, touchUser: true})

	case authapi.EventSignedIn, authapi.EventTokenRefreshed, authapi.EventUserUpdated:
		s.reconcileFromEvent(ev)

	default:
		if ev.Session != nil && ev.Session.User != nil {
			// Unknown event carrying a session: reconcile like a sign-in,
			// but never punish a transient failure with a forced sign-out.
			s.logger.Warn(context.Background(), "unknown auth event with session, reconciling", "kind", ev.Kind.String())
			s.reconcileFromEvent(ev)
			return
		}
		s.logger.Warn(context.Background(), "ignoring unknown auth event", "kind", ev.Kind.String())
		s.propose(proposal{})
	}
}

func (s *Synchronizer) reconcileFromEvent(ev authapi.Event) {
	if ev.Session == nil || ev.Session.User == nil {
		s.propose(proposal{})
		return
	}
	att := s.attempt.Add(1)
	identity := ev.Session.User
	go func() {
		user := s.buildSnapshot(s.ctx, identity)
		s.propose(proposal{attempt: att, user: user, touchUser: true})
	}()
}

// buildSnapshot races the real profile fetch against the bounded timeout and
// merges the outcome over the metadata-derived placeholder. It always
// produces a usable snapshot; a missing record additionally triggers a
// fire-and-forget profile creation so the next reconciliation finds one.
func (s *Synchronizer) buildSnapshot(ctx context.Context, identity *authapi.Identity) *AuthUser {
	placeholder := placeholderProfile(identity)

	fctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		prof *models.Profile
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		prof, err := s.profiles.GetByID(fctx, identity.ID)
		ch <- result{prof: prof, err: err}
	}()

	timer := time.NewTimer(s.opts.ProfileFetchTimeout)
	defer timer.Stop()

	profile := placeholder
	select {
	case r := <-ch:
		switch {
		case r.err == nil && r.prof != nil:
			profile = r.prof.Merge(placeholder)
		case errors.Is(r.err, common.ErrNotFound):
			s.lazyCreateProfile(*placeholder)
		case r.err != nil:
			s.logger.Debug(ctx, "profile fetch failed, using placeholder", "user_id", identity.ID, "error", r.err)
		}
	case <-timer.C:
		s.logger.Debug(ctx, "profile fetch timed out, using placeholder", "user_id", identity.ID)
	case <-ctx.Done():
	}

	return &AuthUser{
		ID:       identity.ID,
		Email:    identity.Email,
		Metadata: identity.Metadata,
		Profile:  *profile,
	}
}

// lazyCreateProfile inserts the placeholder record in the background. Its
// failure is swallowed: this is an optimization for the next reconciliation,
// not a correctness requirement.
func (s *Synchronizer) lazyCreateProfile(prof models.Profile) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.ProfileFetchTimeout)
		defer cancel()
		if err := s.profiles.Insert(ctx, &prof); err != nil {
			s.logger.Debug(ctx, "lazy profile creation failed", "user_id", prof.ID, "error", err)
		}
	}()
}

// applyLoop is the single writer of the state cell.
func (s *Synchronizer) applyLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case p := <-s.proposals:
			s.apply(p)
		}
	}
}

func (s *Synchronizer) apply(p proposal) {
	// A conditional proposal from a superseded attempt is discarded; the
	// newer attempt posts its own proposal and settles loading itself.
	if p.attempt != 0 && p.attempt != s.attempt.Load() {
		return
	}

	s.mu.Lock()
	st := s.state
	changed := false

	if p.touchUser {
		switch {
		case p.user == nil:
			if st.User != nil {
				st.User = nil
				changed = true
			}
		case st.User == nil, p.force, !sameUser(st.User, p.user):
			st.User = p.user
			changed = true
		}
	}
	if st.Loading {
		st.Loading = false
		changed = true
	}

	if changed {
		s.state = st
		s.notifyLocked(st)
	}
	s.mu.Unlock()
}

func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	if s.state.Loading != v {
		s.state.Loading = v
		s.notifyLocked(s.state)
	}
	s.mu.Unlock()
}

// notifyLocked pushes the new state to every watcher, keeping only the
// latest value per channel. Callers hold s.mu.
func (s *Synchronizer) notifyLocked(st State) {
	for _, ch := range s.watchers {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

func (s *Synchronizer) propose(p proposal) {
	select {
	case s.proposals <- p:
	case <-s.ctx.Done():
	}
}

// tickerLoop drives the fallback reconciliation: a fixed interval plus
// debounced visibility signals.
func (s *Synchronizer) tickerLoop() {
	ticker := time.NewTicker(s.opts.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Reconcile(s.ctx)
		case <-s.visible:
			timer := time.NewTimer(s.opts.VisibilityDebounce)
			select {
			case <-timer.C:
				// Collapse signals that piled up during the debounce.
				select {
				case <-s.visible:
				default:
				}
				s.Reconcile(s.ctx)
			case <-s.ctx.Done():
				timer.Stop()
				return
			}
			timer.Stop()
		}
	}
}
