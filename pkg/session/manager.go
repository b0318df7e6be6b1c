package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/credentials"
	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
)

type Observer func(old, new State)

// Manager owns the session state machine and is the sole writer of the
// credential store under normal operation; the pipeline's 401 handling is the
// one exception. Views register observers explicitly and must cancel them on
// teardown.
type Manager struct {
	lock     sync.Mutex
	state    State
	identity string

	store    credentials.Store
	pipeline *pipeline.Pipeline
	notifier pipeline.Notifier

	observers    map[int]Observer
	nextObserver int
}

// NewManager starts in Authenticating; Rehydrate resolves the initial state
// from whatever credential survived the last process.
func NewManager(p *pipeline.Pipeline, store credentials.Store, notifier pipeline.Notifier) *Manager {
	if notifier == nil {
		notifier = pipeline.NopNotifier{}
	}

	m := &Manager{
		state:     Authenticating,
		store:     store,
		pipeline:  p,
		notifier:  notifier,
		observers: map[int]Observer{},
	}

	p.OnSessionExpired(m.sessionExpired)

	return m
}

func (m *Manager) State() State {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.state
}

// Identity returns who is signed in, empty outside Authenticated.
func (m *Manager) Identity() string {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.identity
}

// Subscribe registers an observer for state transitions and returns its
// cancel function. Observers run sequentially per transition.
func (m *Manager) Subscribe(observer Observer) (cancel func()) {
	m.lock.Lock()

	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = observer

	m.lock.Unlock()

	return func() {
		m.lock.Lock()
		delete(m.observers, id)
		m.lock.Unlock()
	}
}

// Rehydrate runs the persisted-session check and resolves the boot state. A
// locally expired token is discarded without a round trip.
func (m *Manager) Rehydrate() State {
	credential := m.store.Current()

	if token, ok := credential.(*credentials.Token); ok && token.Expired(time.Now()) {
		log.Debug("persisted session token is expired")

		if err := m.store.Clear(); err != nil {
			log.Error(err)
		}

		credential = nil
	}

	if credential == nil {
		m.transition(Unauthenticated, "")

		return Unauthenticated
	}

	err := m.probe(nil)
	if err != nil {
		// On a 401 the pipeline already cleared the store.
		m.transition(Unauthenticated, "")

		return Unauthenticated
	}

	m.transition(Authenticated, credential.Identity())

	return Authenticated
}

// SignIn probes the candidate credential against the control plane and
// persists it on acceptance. On rejection the session stays in its prior
// state and the error is returned.
func (m *Manager) SignIn(identity, secret string) error {
	m.lock.Lock()

	if m.state == Authenticating {
		m.lock.Unlock()

		return errors.New("authentication already in progress")
	}

	if m.state == Authenticated {
		m.lock.Unlock()

		return errors.New("already signed in")
	}

	// Claim Authenticating while still holding the guard, so two concurrent
	// sign-ins can never both pass it.
	prior := m.state
	m.state = Authenticating
	m.identity = ""
	observers := m.observerList()

	m.lock.Unlock()

	log.Debugf("session %s -> %s", prior, Authenticating)

	for _, observer := range observers {
		observer(prior, Authenticating)
	}

	candidate := credentials.NewBasic(identity, secret)

	err := m.probe(candidate)
	if err != nil {
		m.transition(prior, "")

		return err
	}

	err = m.store.Set(candidate)
	if err != nil {
		m.transition(prior, "")

		return errors.Wrap(err, "persisting credential")
	}

	m.transition(Authenticated, identity)
	m.notifier.Success("Welcome to Nexus Weaver!")

	return nil
}

// SignUp creates a new identity. It never transitions the session; the user
// completes confirmation out of band and signs in afterwards.
func (m *Manager) SignUp(identity, secret string) error {
	err := m.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodPost,
		Path:   api.GetSignupPath(),
		Body: &api.SignupRequestBody{
			Email:    identity,
			Password: secret,
		},
	}, nil)
	if err != nil {
		return err
	}

	m.notifier.Success("Check your email for the confirmation link!")

	return nil
}

// ResetPassword is a side-channel action and leaves the session state alone.
func (m *Manager) ResetPassword(identity string) error {
	err := m.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodPost,
		Path:   api.GetPasswordResetPath(),
		Body:   &api.PasswordResetRequestBody{Email: identity},
	}, nil)
	if err != nil {
		return err
	}

	m.notifier.Success("Password reset email sent!")

	return nil
}

// SignOut clears the persisted credential unconditionally, from any state.
func (m *Manager) SignOut() {
	if err := m.store.Clear(); err != nil {
		log.Error(errors.Wrap(err, "clearing credential on sign out"))
	}

	m.transition(Unauthenticated, "")
	m.notifier.Success("Signed out successfully")
}

// probe issues the cheapest authenticated read the control plane offers.
// A nil credential probes whatever the store currently holds.
func (m *Manager) probe(credential credentials.Credential) error {
	return m.pipeline.Execute(pipeline.RequestSpec{
		Method:     http.MethodGet,
		Path:       api.GetDeploymentsPath(),
		Credential: credential,
	}, nil)
}

// sessionExpired consumes the pipeline's session-expired signal. The
// Authenticated check under the lock collapses any number of concurrent 401s
// into a single Authenticated -> Expired -> Unauthenticated pass.
func (m *Manager) sessionExpired() {
	m.lock.Lock()

	if m.state != Authenticated {
		m.lock.Unlock()

		return
	}

	m.state = Expired
	m.identity = ""
	observers := m.observerList()

	m.lock.Unlock()

	for _, observer := range observers {
		observer(Authenticated, Expired)
	}

	m.transition(Unauthenticated, "")
}

func (m *Manager) transition(to State, identity string) {
	m.lock.Lock()

	from := m.state
	m.state = to
	m.identity = identity

	observers := m.observerList()

	m.lock.Unlock()

	if from == to {
		return
	}

	log.Debugf("session %s -> %s", from, to)

	for _, observer := range observers {
		observer(from, to)
	}
}

func (m *Manager) observerList() []Observer {
	observers := make([]Observer, 0, len(m.observers))
	for _, observer := range m.observers {
		observers = append(observers, observer)
	}

	return observers
}
