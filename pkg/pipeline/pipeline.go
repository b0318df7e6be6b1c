package pipeline

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/credentials"
)

const (
	ReqIDHeaderField = "REQ_ID"

	defaultTimeout = 10 * time.Second

	sessionExpiredMessage = "Session expired. Please login again."
)

// RequestSpec describes one outbound call.
type RequestSpec struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Credential overrides the store for this call only. Used by the sign-in
	// probe, which must test a candidate credential without committing it.
	Credential credentials.Credential
}

// Pipeline wraps every outbound call: attaches the current credential,
// classifies failures, surfaces each failure to the notifier exactly once and
// clears the credential store on a 401. It performs no retries.
type Pipeline struct {
	hostPort     string
	hostPortLock sync.RWMutex

	client   *http.Client
	store    credentials.Store
	notifier Notifier

	expiredLock sync.Mutex
	onExpired   []func()
}

func New(addr string, store credentials.Store, notifier Notifier) *Pipeline {
	if store == nil {
		panic("pipeline requires a credential store")
	}

	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Pipeline{
		hostPort: addr,
		client:   &http.Client{Timeout: defaultTimeout},
		store:    store,
		notifier: notifier,
	}
}

func (p *Pipeline) SetHostPort(addr string) {
	p.hostPortLock.Lock()
	p.hostPort = addr
	p.hostPortLock.Unlock()
}

func (p *Pipeline) GetHostPort() string {
	p.hostPortLock.RLock()
	defer p.hostPortLock.RUnlock()

	return p.hostPort
}

// OnSessionExpired registers a callback fired when the server rejects the
// current credential. The store is already cleared by the time it runs.
func (p *Pipeline) OnSessionExpired(fn func()) {
	p.expiredLock.Lock()
	p.onExpired = append(p.onExpired, fn)
	p.expiredLock.Unlock()
}

// Execute dispatches the request and decodes a success body into
// responseBody when it is non-nil. Any failure comes back as *Error after
// one notification; side effects are at most once per call.
func (p *Pipeline) Execute(spec RequestSpec, responseBody interface{}) error {
	request := p.buildRequest(spec)

	log.Debugf("Doing request: %s %s", request.Method, request.URL.String())

	resp, err := p.client.Do(request)
	if err != nil {
		return p.fail(&Error{Kind: Network, Message: err.Error()})
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error(closeErr)
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return p.sessionExpired()
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return p.fail(classifyFailure(resp))
	}

	if responseBody != nil {
		err = json.NewDecoder(resp.Body).Decode(responseBody)
		if err != nil {
			return p.fail(&Error{
				Kind:    Server,
				Status:  resp.StatusCode,
				Message: "invalid response from server",
			})
		}
	} else {
		_, err = io.Copy(io.Discard, resp.Body)
		if err != nil {
			log.Warn(err)
		}
	}

	log.Debugf("Done: %s %s", request.Method, request.URL.String())

	return nil
}

func (p *Pipeline) buildRequest(spec RequestSpec) *http.Request {
	hostURL := url.URL{
		Scheme:   "http",
		Host:     p.GetHostPort(),
		Path:     spec.Path,
		RawQuery: spec.Query.Encode(),
	}

	bodyBuffer := new(bytes.Buffer)

	if spec.Body != nil {
		jsonStr, err := json.Marshal(spec.Body)
		if err != nil {
			panic(err)
		}

		bodyBuffer = bytes.NewBuffer(jsonStr)
	}

	request, err := http.NewRequest(spec.Method, hostURL.String(), bodyBuffer)
	if err != nil {
		panic(err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(ReqIDHeaderField, uuid.New().String())

	credential := spec.Credential
	if credential == nil {
		credential = p.store.Current()
	}

	if credential != nil {
		credential.Apply(request)
	}

	return request
}

// sessionExpired clears the store, raises the session-expired signal and
// fails the call. One clear and one notification per call, no matter how
// many concurrent calls hit the same 401.
func (p *Pipeline) sessionExpired() error {
	err := p.store.Clear()
	if err != nil {
		log.Error(errors.Wrap(err, "clearing rejected credential"))
	}

	p.expiredLock.Lock()
	callbacks := make([]func(), len(p.onExpired))
	copy(callbacks, p.onExpired)
	p.expiredLock.Unlock()

	for _, fn := range callbacks {
		fn()
	}

	return p.fail(&Error{
		Kind:    Unauthorized,
		Status:  http.StatusUnauthorized,
		Message: sessionExpiredMessage,
	})
}

func (p *Pipeline) fail(typed *Error) error {
	p.notifier.Error(typed.Message)

	return typed
}

func classifyFailure(resp *http.Response) *Error {
	kind := Validation
	if resp.StatusCode >= http.StatusInternalServerError {
		kind = Server
	}

	message := extractMessage(resp.Body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &Error{
		Kind:    kind,
		Status:  resp.StatusCode,
		Message: message,
	}
}

func extractMessage(body io.Reader) string {
	bodyBytes, err := io.ReadAll(body)
	if err != nil || len(bodyBytes) == 0 {
		return ""
	}

	var problem api.ProblemDetails

	err = json.Unmarshal(bodyBytes, &problem)
	if err != nil {
		return ""
	}

	return problem.UserMessage()
}
