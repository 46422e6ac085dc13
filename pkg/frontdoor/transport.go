package frontdoor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aescanero/debatehub/internal/application/progress"
	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/gorilla/websocket"
)

// Stream is an open push subscription
type Stream interface {
	// Next blocks until the next event. io.EOF means the server closed
	// the stream.
	Next(ctx context.Context) (domain.ProgressEvent, error)
	Close() error
}

// Transport gives a watcher access to one backend. Unknown sessions are
// reported as domain.ErrSessionNotFound; everything else that goes wrong in
// transit wraps domain.ErrTransport.
type Transport interface {
	Subscribe(ctx context.Context, sessionID string) (Stream, error)
	Poll(ctx context.Context, sessionID string) (domain.ProgressEvent, error)
	Result(ctx context.Context, sessionID string) (*domain.Result, error)
}

// HTTPTransport talks to the REST API: websocket for streaming, JSON GETs
// for polling and results
type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// NewHTTPTransport creates a transport for the server at baseURL.
// httpClient may be nil.
func NewHTTPTransport(baseURL string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		dialer:     websocket.DefaultDialer,
	}
}

// CreateDebate starts a debate session and returns its id
func (t *HTTPTransport) CreateDebate(ctx context.Context, req domain.DebateRequest) (string, error) {
	return t.create(ctx, "/api/v1/sessions", req)
}

// CreateBusiness starts a business idea session and returns its id
func (t *HTTPTransport) CreateBusiness(ctx context.Context, req domain.BusinessRequest) (string, error) {
	return t.create(ctx, "/api/v1/business", req)
}

func (t *HTTPTransport) create(ctx context.Context, path string, body any) (string, error) {
	reqJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := t.do(req, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// Subscribe opens the websocket stream of a session
func (t *HTTPTransport) Subscribe(ctx context.Context, sessionID string) (Stream, error) {
	wsURL, err := url.Parse(t.baseURL + "/api/v1/sessions/" + url.PathEscape(sessionID) + "/ws")
	if err != nil {
		return nil, fmt.Errorf("failed to build stream url: %w", err)
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}

	conn, resp, err := t.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: failed to open stream: %v", domain.ErrTransport, err)
	}

	s := &wsStream{conn: conn, done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

// Poll fetches the latest progress event of a session
func (t *HTTPTransport) Poll(ctx context.Context, sessionID string) (domain.ProgressEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.sessionURL(sessionID, "/progress"), nil)
	if err != nil {
		return domain.ProgressEvent{}, fmt.Errorf("failed to create request: %w", err)
	}

	var event domain.ProgressEvent
	if err := t.do(req, http.StatusOK, &event); err != nil {
		return domain.ProgressEvent{}, err
	}
	return event, nil
}

// Result fetches the result of a terminal session
func (t *HTTPTransport) Result(ctx context.Context, sessionID string) (*domain.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.sessionURL(sessionID, "/result"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result domain.Result
	if err := t.do(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (t *HTTPTransport) sessionURL(sessionID, suffix string) string {
	return t.baseURL + "/api/v1/sessions/" + url.PathEscape(sessionID) + suffix
}

// apiError mirrors the server error envelope
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *HTTPTransport) do(req *http.Request, want int, out any) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var envelope apiError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope)
		message := envelope.Error.Message
		if message == "" {
			message = resp.Status
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return domain.ErrSessionNotFound
		case http.StatusConflict:
			if envelope.Error.Code == "NOT_COMPLETED" {
				return domain.ErrResultNotReady
			}
			return fmt.Errorf("%w: %s", domain.ErrSessionTerminal, message)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, message)
		}
		return fmt.Errorf("%w: unexpected status %d: %s", domain.ErrTransport, resp.StatusCode, message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrTransport, err)
	}
	return nil
}

// wsStream reads progress events from a websocket connection
type wsStream struct {
	conn *websocket.Conn
	done chan struct{}
}

func (s *wsStream) Next(ctx context.Context) (domain.ProgressEvent, error) {
	var event domain.ProgressEvent
	if err := s.conn.ReadJSON(&event); err != nil {
		if ctx.Err() != nil {
			return domain.ProgressEvent{}, ctx.Err()
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return domain.ProgressEvent{}, io.EOF
		}
		return domain.ProgressEvent{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return event, nil
}

func (s *wsStream) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.conn.Close()
}

// LocalSource is the in-process side of a LocalTransport
type LocalSource interface {
	Subscribe(sessionID string) (*progress.Subscription, error)
	Progress(sessionID string) (domain.ProgressEvent, error)
	Result(ctx context.Context, sessionID string) (*domain.Result, error)
}

// LocalTransport reads progress straight from an in-process source
type LocalTransport struct {
	source LocalSource
}

// NewLocalTransport creates a transport over source
func NewLocalTransport(source LocalSource) *LocalTransport {
	return &LocalTransport{source: source}
}

// Subscribe attaches a hub subscription
func (t *LocalTransport) Subscribe(ctx context.Context, sessionID string) (Stream, error) {
	sub, err := t.source.Subscribe(sessionID)
	if err != nil {
		return nil, err
	}
	return &localStream{sub: sub}, nil
}

// Poll returns the latest event
func (t *LocalTransport) Poll(ctx context.Context, sessionID string) (domain.ProgressEvent, error) {
	return t.source.Progress(sessionID)
}

// Result returns the terminal result
func (t *LocalTransport) Result(ctx context.Context, sessionID string) (*domain.Result, error) {
	return t.source.Result(ctx, sessionID)
}

type localStream struct {
	sub *progress.Subscription
}

func (s *localStream) Next(ctx context.Context) (domain.ProgressEvent, error) {
	select {
	case event, ok := <-s.sub.C():
		if !ok {
			return domain.ProgressEvent{}, io.EOF
		}
		return event, nil
	case <-ctx.Done():
		return domain.ProgressEvent{}, ctx.Err()
	}
}

func (s *localStream) Close() error {
	s.sub.Close()
	return nil
}
