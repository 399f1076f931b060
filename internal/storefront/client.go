package storefront

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
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrLoginRequired is returned by Checkout when the session has no token.
	ErrLoginRequired = errors.New("login required")
	// ErrEmptyCart is returned by Checkout when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingCredentials is returned when email or password is blank.
	ErrMissingCredentials = errors.New("email and password are required")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront api: status %d", e.Status)
	}
	return fmt.Sprintf("storefront api: status %d: %s", e.Status, e.Message)
}

// Catalog is a product listing. Offline is set when the built-in fallback
// list was returned instead of the server's.
type Catalog struct {
	Products []Product
	Offline  bool
}

type AuthResult struct {
	Message string
	Demo    bool
}

// CheckoutResult describes a submitted order. Simulated is set when the
// backend was unreachable and nothing was recorded.
type CheckoutResult struct {
	OrderID   int64
	Total     decimal.Decimal
	Message   string
	Simulated bool
}

// Client talks to the storefront HTTP API. Transport failures trip a
// circuit breaker and degrade to the offline behaviour of each call.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

// Products lists the catalog, optionally filtered by category.
func (c *Client) Products(ctx context.Context, category string) (Catalog, error) {
	path := "/api/products"
	if category != "" {
		path += "?categoria=" + url.QueryEscape(category)
	}
	var products []Product
	err := c.call(ctx, http.MethodGet, path, "", nil, &products)
	if err != nil {
		if isOffline(err) {
			c.logger.Warn().Err(err).Msg("product listing unavailable, using fallback catalog")
			return Catalog{Products: fallbackCatalog(), Offline: true}, nil
		}
		return Catalog{}, err
	}
	if products == nil {
		products = []Product{}
	}
	return Catalog{Products: products}, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Register creates an account. The session is not signed in afterwards; it
// switches to login mode instead.
func (c *Client) Register(ctx context.Context, s *Session, email, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, ErrMissingCredentials
	}
	var resp authResponse
	err := c.call(ctx, http.MethodPost, "/api/auth/register", "", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		if isOffline(err) {
			return c.demoLogin(s, email, err), nil
		}
		return AuthResult{}, err
	}
	s.AuthMode = AuthModeLogin
	return AuthResult{Message: resp.Message}, nil
}

// Login signs the session in.
func (c *Client) Login(ctx context.Context, s *Session, email, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, ErrMissingCredentials
	}
	var resp authResponse
	err := c.call(ctx, http.MethodPost, "/api/auth/login", "", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		if isOffline(err) {
			return c.demoLogin(s, email, err), nil
		}
		return AuthResult{}, err
	}
	s.Token = resp.Token
	s.Email = resp.Email
	if s.Email == "" {
		s.Email = email
	}
	return AuthResult{Message: resp.Message}, nil
}

// Authenticate runs Login or Register depending on the session's mode.
func (c *Client) Authenticate(ctx context.Context, s *Session, email, password string) (AuthResult, error) {
	if s.AuthMode == AuthModeRegister {
		return c.Register(ctx, s, email, password)
	}
	return c.Login(ctx, s, email, password)
}

func (c *Client) demoLogin(s *Session, email string, cause error) AuthResult {
	c.logger.Warn().Err(cause).Msg("backend unreachable, opening demo session")
	s.Token = DemoToken
	s.Email = email
	return AuthResult{Message: "demo mode, backend unreachable", Demo: true}
}

type orderItem struct {
	ProductID int64           `json:"productId"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	Cantidad  int             `json:"cantidad"`
}

type orderRequest struct {
	Items []orderItem `json:"items"`
}

type orderResponse struct {
	Message string          `json:"message"`
	OrderID int64           `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}

// Checkout submits the cart as an order and empties it on success. When
// the backend cannot be reached the cart is still emptied and the result
// is flagged Simulated.
func (c *Client) Checkout(ctx context.Context, s *Session) (CheckoutResult, error) {
	if !s.SignedIn() {
		return CheckoutResult{}, ErrLoginRequired
	}
	if s.Cart.IsEmpty() {
		return CheckoutResult{}, ErrEmptyCart
	}

	lines := s.Cart.Lines()
	req := orderRequest{Items: make([]orderItem, 0, len(lines))}
	for _, l := range lines {
		req.Items = append(req.Items, orderItem{
			ProductID: l.Product.ID,
			Nombre:    l.Product.Name,
			Precio:    l.Product.Price,
			Cantidad:  l.Quantity,
		})
	}
	localTotal := s.Cart.Total()

	var resp orderResponse
	err := c.call(ctx, http.MethodPost, "/api/orders", s.Token, req, &resp)
	if err != nil {
		if isOffline(err) {
			c.logger.Warn().Err(err).Str("total", localTotal.StringFixed(2)).Msg("checkout simulated, backend unreachable")
			s.Cart.Clear()
			return CheckoutResult{Total: localTotal, Message: "simulated checkout, backend unreachable", Simulated: true}, nil
		}
		return CheckoutResult{}, err
	}
	s.Cart.Clear()
	return CheckoutResult{OrderID: resp.OrderID, Total: resp.Total, Message: resp.Message}, nil
}

// offlineError marks transport failures, including an open breaker.
type offlineError struct {
	err error
}

func (e *offlineError) Error() string { return "storefront api unreachable: " + e.err.Error() }

func (e *offlineError) Unwrap() error { return e.err }

func isOffline(err error) bool {
	var oe *offlineError
	return errors.As(err, &oe)
}

func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// HTTP error statuses are answers, not outages; only transport errors count against the breaker.
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &offlineError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &offlineError{err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
