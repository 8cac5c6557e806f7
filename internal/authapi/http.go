package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/logging"
)

// expirySkew is how long before the nominal expiry a token is already
// treated as expired, so a refresh happens before requests start failing.
const expirySkew = 30 * time.Second

// HTTPClient implements Client against the auth service's REST API
// (GoTrue-style: /token, /signup, /logout, /user).
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	store   *sessionStore
	logger  logging.Logger

	mu      sync.Mutex
	session *Session

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewHTTPClient builds the adapter and restores any session persisted by a
// previous run. A corrupt or unreadable session file is discarded, not fatal.
func NewHTTPClient(baseURL, apiKey, sessionFile string, logger logging.Logger) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{},
		store:   newSessionStore(sessionFile),
		logger:  logger,
		subs:    make(map[int]func(Event)),
	}

	sess, err := c.store.Load()
	if err != nil {
		logger.Warn(context.Background(), "discarding unreadable session file", "error", err)
	} else {
		c.session = sess
	}
	return c, nil
}

// tokenResponse is the wire shape of a successful /token call.
type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         *Identity `json:"user"`
}

// signUpResponse covers both /signup outcomes: a full session when e-mail
// confirmation is disabled, or a bare identity when a confirmation link was
// sent.
type signUpResponse struct {
	tokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e *errorResponse) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	default:
		return e.Error
	}
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error) {
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": creds.Email, "password": creds.Password}

	var tr tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/token", q, body, "", &tr); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	sess := c.sessionFromToken(&tr)
	c.install(sess)
	c.emit(Event{Kind: EventSignedIn, Session: sess})
	return sess, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, params SignUpParams) (*Session, error) {
	q := url.Values{}
	if params.EmailRedirectTo != "" {
		q.Set("redirect_to", params.EmailRedirectTo)
	}
	body := map[string]any{
		"email":    params.Email,
		"password": params.Password,
	}
	if len(params.Metadata) > 0 {
		body["data"] = params.Metadata
	}

	var sr signUpResponse
	if err := c.doJSON(ctx, http.MethodPost, "/signup", q, body, "", &sr); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	// Confirmation pending: no session yet, the user follows the e-mail link.
	if sr.AccessToken == "" {
		return nil, nil
	}

	sess := c.sessionFromToken(&sr.tokenResponse)
	c.install(sess)
	c.emit(Event{Kind: EventSignedIn, Session: sess})
	return sess, nil
}

// SignOut revokes the session server-side, but clears local state whether or
// not the call succeeds: being signed out locally must not depend on the
// network.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.Unlock()

	var callErr error
	if token != "" {
		callErr = c.doJSON(ctx, http.MethodPost, "/logout", nil, nil, token, nil)
	}

	c.install(nil)
	c.emit(Event{Kind: EventSignedOut})

	if callErr != nil {
		return fmt.Errorf("sign out: %w", callErr)
	}
	return nil
}

// GetSession returns the current session, refreshing the tokens first when
// they are expired. No session is (nil, nil), not an error.
func (c *HTTPClient) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil {
		return nil, nil
	}
	if !sess.Expired(expirySkew) {
		copied := *sess
		return &copied, nil
	}
	return c.refreshSession(ctx, sess.RefreshToken)
}

func (c *HTTPClient) refreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var tr tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/token", q, body, "", &tr)
	if err != nil {
		// A rejected refresh token means the session is gone for good.
		// Anything else is transient: keep what we have and report failure.
		if errors.Is(err, common.ErrUnauthorized) {
			c.install(nil)
			c.emit(Event{Kind: EventSignedOut})
			return nil, nil
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	sess := c.sessionFromToken(&tr)
	c.install(sess)
	c.emit(Event{Kind: EventTokenRefreshed, Session: sess})
	return sess, nil
}

// GetUser fetches the identity record from the service using the current
// session. No session is (nil, nil).
func (c *HTTPClient) GetUser(ctx context.Context) (*Identity, error) {
	sess, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	var id Identity
	if err := c.doJSON(ctx, http.MethodGet, "/user", nil, nil, sess.AccessToken, &id); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &id, nil
}

func (c *HTTPClient) OnAuthStateChange(handler func(Event)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = handler

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *HTTPClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

// install replaces the held session and persists the change. A failed write
// only loses cross-restart persistence, so it is logged and swallowed.
func (c *HTTPClient) install(sess *Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	if err := c.store.Save(sess); err != nil {
		c.logger.Warn(context.Background(), "persisting session failed", "error", err)
	}
}

func (c *HTTPClient) emit(ev Event) {
	c.subMu.Lock()
	handlers := make([]func(Event), 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.subMu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (c *HTTPClient) sessionFromToken(tr *tokenResponse) *Session {
	expiresAt := time.Time{}
	if tr.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	} else if exp, err := TokenExpiry(tr.AccessToken); err == nil {
		expiresAt = exp
	}
	user := tr.User
	if user == nil {
		// Some token responses carry no user object; the sub claim still
		// identifies the account.
		if sub, err := TokenSubject(tr.AccessToken); err == nil {
			user = &Identity{ID: sub}
		}
	}
	return &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
	}
}

// doJSON performs one REST call. Transport failures map to ErrUnavailable,
// 401/403 and credential rejections to ErrUnauthorized, and 5xx to
// ErrUnavailable, so callers can sort transient from terminal with errors.Is.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, body any, bearer string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", common.ErrUnavailable, resp.StatusCode)
		case resp.StatusCode == http.StatusUnauthorized,
			resp.StatusCode == http.StatusForbidden,
			er.Error == "invalid_grant":
			return fmt.Errorf("%w: %s", common.ErrUnauthorized, er.message())
		default:
			return fmt.Errorf("auth service rejected request (status %d): %s", resp.StatusCode, er.message())
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
