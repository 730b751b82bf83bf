package panelclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"xui-vpn-bot/internal/config"
	"xui-vpn-bot/internal/constants"
	apierrors "xui-vpn-bot/internal/errors"
)

const sessionKey = "session"

// Client talks to one 3x-ui panel over its HTTP API. One instance owns
// one session; the session is acquired on demand and replayed on every
// call as a cookie header.
type Client struct {
	httpClient   *resty.Client
	panelConfig  config.PanelConfig
	sessionCache *cache.Cache
	logger       *logrus.Logger
}

// apiResponse is the generic envelope every panel endpoint returns
type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

// NewClient creates a new panel API client
func NewClient(panelConfig config.PanelConfig, logger *logrus.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: constants.ConnectTimeout * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: constants.ConnectTimeout * time.Second,
		IdleConnTimeout:     constants.IdleConnTimeout * time.Second,
		MaxIdleConns:        constants.MaxIdleConns,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: !panelConfig.VerifySSL},
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetTimeout(constants.RequestTimeout * time.Second).
		SetBaseURL(strings.TrimRight(panelConfig.BaseURL, "/"))

	return &Client{
		httpClient:   httpClient,
		panelConfig:  panelConfig,
		sessionCache: cache.New(constants.SessionCacheExpiration*time.Minute, constants.SessionCacheCleanup*time.Minute),
		logger:       logger,
	}
}

// Login authenticates against the panel with form-encoded credentials and
// caches the returned session cookies as a single header value.
func (c *Client) Login(ctx context.Context) error {
	c.logger.Infof("Logging in to panel at %s", c.panelConfig.BaseURL)
	c.logger.Debugf("Using username: %s", c.panelConfig.Username)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": c.panelConfig.Username,
			"password": c.panelConfig.Password,
		}).
		Post("/login")

	if err != nil {
		c.logger.Errorf("Login request failed: %v", err)
		return &apierrors.AuthenticationError{Reason: "login request failed", Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Errorf("Login failed - status: %d, response: %s", resp.StatusCode(), resp.String())
		return &apierrors.AuthenticationError{Reason: fmt.Sprintf("login returned status %d", resp.StatusCode())}
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		c.logger.Errorf("Login returned no session cookie, response: %s", resp.String())
		return &apierrors.AuthenticationError{Reason: "no session cookie received"}
	}

	pairs := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	c.sessionCache.Set(sessionKey, strings.Join(pairs, "; "), cache.DefaultExpiration)

	c.logger.Info("Successfully logged in to panel")
	return nil
}

// execute issues one API call against the panel. A missing session is
// acquired first; a session-expiry signal triggers exactly one re-login
// and one retried call, after which a second expiry propagates as a
// ResponseError.
func (c *Client) execute(ctx context.Context, method, path string, body interface{}) (*apiResponse, error) {
	if _, found := c.sessionCache.Get(sessionKey); !found {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.logger.Warn("Session expired, re-authenticating")
		c.sessionCache.Delete(sessionKey)
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		resp, err = c.do(ctx, method, path, body)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &apierrors.ResponseError{Status: resp.StatusCode(), Body: resp.String()}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		c.logger.Errorf("Failed to parse response for %s %s: %v", method, path, err)
		return nil, &apierrors.ParseError{Err: err}
	}

	return &apiResp, nil
}

// do performs a single timed HTTP call with the current session attached
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*resty.Response, error) {
	req := c.httpClient.R().SetContext(ctx)

	if session, found := c.sessionCache.Get(sessionKey); found {
		req.SetHeader("Cookie", session.(string))
	}

	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Errorf("Panel API %s %s failed after %s: %v", method, path, elapsed.Round(time.Millisecond), err)
		return nil, &apierrors.NetworkError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
	}

	c.logger.Infof("Panel API %s %s - status: %d, time: %s", method, path, resp.StatusCode(), elapsed.Round(time.Millisecond))
	return resp, nil
}

// decodeObj unmarshals the envelope's obj payload into out
func decodeObj(resp *apiResponse, out interface{}) error {
	if len(resp.Obj) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Obj, out); err != nil {
		return &apierrors.ParseError{Err: err}
	}
	return nil
}
