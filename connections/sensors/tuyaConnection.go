package sensors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samborkent/uuidv7"

	"github.com/Mause/tuya-graphing/connections"
	"github.com/Mause/tuya-graphing/metrics"
	"github.com/Mause/tuya-graphing/utils"
)

const TOKEN_PATH = "/v1.0/token"

const TOKEN_REFRESH_BUFFER = 5 * time.Minute

const DEFAULT_REGION = "us"

// OpenAPI hosts by data center.
var REGION_ENDPOINTS = map[string]string{
	"us":   "https://openapi.tuyaus.com",
	"ueaz": "https://openapi-ueaz.tuyaus.com",
	"eu":   "https://openapi.tuyaeu.com",
	"weu":  "https://openapi-weaz.tuyaeu.com",
	"cn":   "https://openapi.tuyacn.com",
	"in":   "https://openapi.tuyain.com",
}

var _ SensorConnection = (*TuyaConnection)(nil)

type TuyaConfig struct {
	AccessID     string
	AccessSecret string
	// Data center key of REGION_ENDPOINTS. Ignored when Endpoint is set.
	Region   string
	Endpoint string
	// Zero leaves requests without a client side timeout.
	HTTPTimeout time.Duration
	// Page bound for a single report log fetch. Zero means unbounded.
	MaxLogPages int
}

type TuyaConnection struct {
	accessID            string
	accessSecret        string
	client              *resty.Client
	maxLogPages         int
	accessToken         string
	refreshToken        string
	uid                 string
	tokenExpirationTime time.Time

	now   func() time.Time
	nonce func() string
}

func NewTuyaConnection(ctx context.Context, config TuyaConfig) (*TuyaConnection, error) {
	endpoint, err := resolveEndpoint(config)
	if err != nil {
		return nil, err
	}
	c := &TuyaConnection{
		accessID:     config.AccessID,
		accessSecret: config.AccessSecret,
		client: resty.New().
			SetBaseURL(endpoint).
			SetTimeout(config.HTTPTimeout).
			SetHeader("Accept", "application/json"),
		maxLogPages: config.MaxLogPages,
		now:         time.Now,
		nonce:       func() string { return uuidv7.New().String() },
	}
	err = c.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("error while opening new Tuya connection: %w", err)
	}
	status, description := c.Status(ctx)
	if status != connections.Good {
		return nil, fmt.Errorf("error while checking status of new Tuya connection. Connection status: %v, connection description: %v", status, description)
	}
	return c, nil
}

func resolveEndpoint(config TuyaConfig) (string, error) {
	if config.Endpoint != "" {
		return strings.TrimSuffix(config.Endpoint, "/"), nil
	}
	region := config.Region
	if region == "" {
		region = DEFAULT_REGION
	}
	endpoint, ok := REGION_ENDPOINTS[strings.ToLower(region)]
	if !ok {
		return "", fmt.Errorf("unknown Tuya region %q", region)
	}
	return endpoint, nil
}

// Ensure the connection to Tuya is active, with 3 main paths of execution:
// Token is active and far from expiring: no actions taken.
// Token is active but close to expiring: token is refreshed using current token.
// No token exists or token is expired: fetch new token.
func (c *TuyaConnection) Open(ctx context.Context) error {
	currentTime := c.now()

	var hasToken = !c.tokenExpirationTime.IsZero()
	var isTokenNearlyExpired = hasToken && currentTime.After(c.tokenExpirationTime.Add(-TOKEN_REFRESH_BUFFER))
	var isTokenExpired = hasToken && currentTime.After(c.tokenExpirationTime)

	if hasToken && !isTokenNearlyExpired {
		return nil
	}

	if !hasToken || isTokenExpired {
		token, err := makeSignedRequest[TokenResult](ctx, c, "token", TOKEN_PATH, map[string]string{"grant_type": "1"}, "")
		if err != nil {
			return fmt.Errorf("error generating new access token for client %v: %w", c.accessID, err)
		}
		c.applyToken(token)
		return nil
	}

	err := c.refreshCurrentToken(ctx)
	if err != nil {
		return fmt.Errorf("error refreshing current token for client %v: %w", c.accessID, err)
	}
	return nil
}
// Tuya user the token was issued for. Empty until the connection is open.
func (c *TuyaConnection) UID() string {
	return c.uid
}

func (c *TuyaConnection) Close() error {
	c.accessToken = ""
	c.refreshToken = ""
	c.uid = ""
	c.tokenExpirationTime = time.Time{}
	return nil
}
func (c *TuyaConnection) Status(ctx context.Context) (connections.PingResult, string) {
	if c.refreshToken == "" {
		return connections.Bad, "no token"
	}
	err := c.refreshCurrentToken(ctx)
	if err != nil {
		return connections.Bad, err.Error()
	}
	return connections.Good, "Successful ping via token refresh"
}

// Make an authenticated GET request, refreshing the token first if needed.
// endpoint labels the request in metrics.
func MakeTuyaRequest[T any](ctx context.Context, c *TuyaConnection, endpoint string, path string, query map[string]string) (*T, error) {
	err := c.Open(ctx) // Ensure tokens are up to date
	if err != nil {
		return nil, fmt.Errorf("error while opening Tuya connection while preparing for request %v: %w", path, err)
	}
	return makeSignedRequest[T](ctx, c, endpoint, path, query, c.accessToken)
}

func makeSignedRequest[T any](ctx context.Context, c *TuyaConnection, endpoint string, path string, query map[string]string, accessToken string) (*T, error) {
	headers := c.signedHeaders(http.MethodGet, path, query, nil, accessToken)
	response, err := utils.GetJson[TypedResponse[T]](ctx, c.client, path, headers, query)
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, fmt.Errorf("error making request to %v with query %v: %w", path, query, err)
	}
	if !response.Success {
		metrics.APIRequests.WithLabelValues(endpoint, "api_error").Inc()
		return nil, &APIError{Path: path, Code: response.Code, Msg: response.Msg}
	}
	metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	return &response.Result, nil
}

// Headers for the HMAC-SHA256 signature. accessToken is empty for token requests.
func (c *TuyaConnection) signedHeaders(method string, path string, query map[string]string, body []byte, accessToken string) map[string]string {
	t := strconv.FormatInt(c.now().UnixMilli(), 10)
	nonce := c.nonce()
	sign := Sign(c.accessSecret, c.accessID+accessToken+t+nonce+StringToSign(method, path, query, body))
	headers := map[string]string{
		"client_id":   c.accessID,
		"sign":        sign,
		"sign_method": SIGN_METHOD,
		"t":           t,
		"nonce":       nonce,
	}
	if accessToken != "" {
		headers["access_token"] = accessToken
	}
	return headers
}

// Refresh the current token. Requires an existing token to exist.
func (c *TuyaConnection) refreshCurrentToken(ctx context.Context) error {
	if c.refreshToken == "" {
		return errors.New("no refresh token to refresh with")
	}
	token, err := makeSignedRequest[TokenResult](ctx, c, "token_refresh", TOKEN_PATH+"/"+c.refreshToken, nil, "")
	if err != nil {
		return fmt.Errorf("error refreshing token for client %v: %w", c.accessID, err)
	}
	c.applyToken(token)
	return nil
}

func (c *TuyaConnection) applyToken(token *TokenResult) {
	c.accessToken = token.AccessToken
	c.refreshToken = token.RefreshToken
	c.uid = token.UID
	c.tokenExpirationTime = c.now().Add(time.Duration(token.ExpireTime) * time.Second)
}
