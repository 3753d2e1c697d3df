// Package registry creates app records in the SmartThings developer
// workspace.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/logger"
)

var ErrAppExists = errors.New("an app with this name already exists")

const (
	AppTypeLambda  = "LAMBDA_SMART_APP"
	AppTypeWebhook = "WEBHOOK_SMART_APP"
)

// AppRequest describes the app to register. Functions is used for lambda
// hosting, TargetURL otherwise.
type AppRequest struct {
	Name            string
	DisplayName     string
	Description     string
	Lambda          bool
	Functions       string
	TargetURL       string
	Classifications []string
	Scopes          []string
}

// App holds the identifiers returned by a successful registration.
type App struct {
	AppID             string
	OAuthClientID     string
	OAuthClientSecret string
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) *Client {
	if log == nil {
		log = logger.Nop()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		log:        log.With("client", "SmartThingsRegistry"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// RegisterURL is where a created app is confirmed.
func (c *Client) RegisterURL(appID string) string {
	return c.cfg.BaseURL + "/apps/" + url.PathEscape(appID) + "/register"
}

// --- wire types ---

type createAppBody struct {
	AppName         string          `json:"appName"`
	DisplayName     string          `json:"displayName"`
	Description     string          `json:"description"`
	SingleInstance  bool            `json:"singleInstance"`
	AppType         string          `json:"appType"`
	Classifications []string        `json:"classifications"`
	OAuth           oauthBody       `json:"oauth"`
	LambdaSmartApp  *lambdaSmartApp `json:"lambdaSmartApp,omitempty"`
	WebhookSmartApp *webhookApp     `json:"webhookSmartApp,omitempty"`
}

type oauthBody struct {
	ClientName string   `json:"clientName"`
	Scope      []string `json:"scope"`
}

type lambdaSmartApp struct {
	Functions []string `json:"functions"`
}

type webhookApp struct {
	TargetURL string `json:"targetUrl"`
}

type createAppResponse struct {
	App struct {
		AppID string `json:"appId"`
	} `json:"app"`
	OAuthClientID     string `json:"oauthClientId"`
	OAuthClientSecret string `json:"oauthClientSecret"`
}

var functionSep = regexp.MustCompile(`[ ,]+`)

// SplitFunctions splits a space or comma delimited list of function ARNs.
func SplitFunctions(s string) []string {
	var out []string
	for _, f := range functionSep.Split(strings.TrimSpace(s), -1) {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func buildBody(req AppRequest) createAppBody {
	scopes := req.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	classes := req.Classifications
	if classes == nil {
		classes = []string{}
	}
	body := createAppBody{
		AppName:         req.Name,
		DisplayName:     req.DisplayName,
		Description:     req.Description,
		Classifications: classes,
		OAuth:           oauthBody{ClientName: req.Name, Scope: scopes},
	}
	if req.Lambda {
		fns := SplitFunctions(req.Functions)
		if fns == nil {
			fns = []string{}
		}
		body.AppType = AppTypeLambda
		body.LambdaSmartApp = &lambdaSmartApp{Functions: fns}
	} else {
		body.AppType = AppTypeWebhook
		body.WebhookSmartApp = &webhookApp{TargetURL: req.TargetURL}
	}
	return body
}

// CreateApp checks that req.Name is free, then registers the app. A name
// that already resolves yields ErrAppExists. 403 and 404 on the lookup mean
// the name is free.
func (c *Client) CreateApp(ctx context.Context, req AppRequest) (*App, error) {
	status, _, err := c.do(ctx, http.MethodGet, "/apps/"+url.PathEscape(req.Name), nil)
	if err != nil {
		return nil, fmt.Errorf("looking up app %q: %w", req.Name, err)
	}
	switch status {
	case http.StatusOK:
		return nil, fmt.Errorf("%q: %w", req.Name, ErrAppExists)
	case http.StatusForbidden, http.StatusNotFound:
	default:
		return nil, fmt.Errorf("looking up app %q: unexpected status %d", req.Name, status)
	}

	payload, err := json.Marshal(buildBody(req))
	if err != nil {
		return nil, err
	}
	status, data, err := c.do(ctx, http.MethodPost, "/apps?signatureType=ST_PADLOCK&requireConfirmation=true", payload)
	if err != nil {
		return nil, fmt.Errorf("creating app %q: %w", req.Name, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("creating app %q: status %d: %s", req.Name, status, truncate(string(data), 200))
	}
	var resp createAppResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("creating app %q: decoding response: %w", req.Name, err)
	}
	if resp.App.AppID == "" {
		return nil, fmt.Errorf("creating app %q: response has no app id", req.Name)
	}
	c.log.Info("app created", "appId", resp.App.AppID, "oauthClientId", resp.OAuthClientID)
	return &App{
		AppID:             resp.App.AppID,
		OAuthClientID:     resp.OAuthClientID,
		OAuthClientSecret: resp.OAuthClientSecret,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start).String())
	return resp.StatusCode, data, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
