package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	requests atomic.Int32

	mu        sync.Mutex
	lastOrder orderRequest
	lastAuth  string
	orderCode int
}

func (f *fakeAPI) lastCall() (orderRequest, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder, f.lastAuth
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.URL.Query().Get("categoria") == "juguetes" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Arroz Costeño 1kg","price":3.5,"categoria":"alimentos","stock":50}]`))
	})
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		var c credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Email == "dup@example.com" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"El email ya está registrado"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Registro correcto","email":"` + c.Email + `"}`))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		var c credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Password != "secreto1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Credenciales inválidas"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"signed.jwt.token","email":"` + c.Email + `","message":"¡Bienvenido!"}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&f.lastOrder)
		code := f.orderCode
		f.mu.Unlock()
		if code == 0 {
			code = http.StatusCreated
		}
		w.WriteHeader(code)
		if code != http.StatusCreated {
			_, _ = w.Write([]byte(`{"message":"Token inválido o expirado"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"ok","orderId":31,"total":15.9}`))
	})
	return mux
}

func newLiveClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/"), api
}

// newDeadClient points at a server that has already been shut down.
func newDeadClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return NewClient(url)
}

func filledSession() *Session {
	s := NewSession()
	s.Cart.Add(arroz)
	s.Cart.Add(arroz)
	s.Cart.Add(aceite)
	return s
}

func TestProducts(t *testing.T) {
	c, _ := newLiveClient(t)

	catalog, err := c.Products(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, catalog.Offline)
	require.Len(t, catalog.Products, 1)
	assert.Equal(t, "alimentos", catalog.Products[0].Category)
	assert.Equal(t, "3.50", catalog.Products[0].Price.StringFixed(2))

	empty, err := c.Products(context.Background(), "juguetes")
	require.NoError(t, err)
	assert.NotNil(t, empty.Products)
	assert.Empty(t, empty.Products)
}

func TestProducts_OfflineUsesFallback(t *testing.T) {
	c := newDeadClient(t)

	catalog, err := c.Products(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, catalog.Offline)
	assert.Len(t, catalog.Products, 8)
}

func TestRegisterThenLogin(t *testing.T) {
	c, _ := newLiveClient(t)
	s := NewSession()
	s.ToggleAuthMode()

	res, err := c.Authenticate(context.Background(), s, "ana@example.com", "secreto1")
	require.NoError(t, err)
	assert.False(t, res.Demo)
	assert.False(t, s.SignedIn())
	assert.Equal(t, AuthModeLogin, s.AuthMode)

	_, err = c.Authenticate(context.Background(), s, "ana@example.com", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", s.Token)
	assert.Equal(t, "ana@example.com", s.Email)
}

func TestLogin_RejectedIsAnAPIError(t *testing.T) {
	c, _ := newLiveClient(t)
	s := NewSession()

	_, err := c.Login(context.Background(), s, "ana@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Credenciales inválidas", apiErr.Message)
	assert.False(t, s.SignedIn())
}

func TestRegister_Conflict(t *testing.T) {
	c, _ := newLiveClient(t)

	_, err := c.Register(context.Background(), NewSession(), "dup@example.com", "secreto1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestLogin_MissingCredentials(t *testing.T) {
	c, api := newLiveClient(t)

	_, err := c.Login(context.Background(), NewSession(), "", "secreto1")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, api.requests.Load())
}

func TestLogin_OfflineOpensDemoSession(t *testing.T) {
	c := newDeadClient(t)
	s := NewSession()

	res, err := c.Login(context.Background(), s, "ana@example.com", "secreto1")
	require.NoError(t, err)
	assert.True(t, res.Demo)
	assert.Equal(t, DemoToken, s.Token)
	assert.True(t, s.Demo())
	assert.Equal(t, "ana@example.com", s.Email)
}

func TestCheckout_RequiresLoginWithoutSending(t *testing.T) {
	c, api := newLiveClient(t)
	s := filledSession()

	_, err := c.Checkout(context.Background(), s)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Zero(t, api.requests.Load())
	assert.Equal(t, 2, s.Cart.Len())
}

func TestCheckout_EmptyCart(t *testing.T) {
	c, api := newLiveClient(t)
	s := NewSession()
	s.Token = "tok"

	_, err := c.Checkout(context.Background(), s)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, api.requests.Load())
}

func TestCheckout_SubmitsCartAndClearsIt(t *testing.T) {
	c, api := newLiveClient(t)
	s := filledSession()
	s.Token = "signed.jwt.token"

	res, err := c.Checkout(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Simulated)
	assert.Equal(t, int64(31), res.OrderID)
	assert.Equal(t, "15.90", res.Total.StringFixed(2))
	assert.True(t, s.Cart.IsEmpty())

	order, auth := api.lastCall()
	assert.Equal(t, "Bearer signed.jwt.token", auth)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(1), order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Cantidad)
	assert.Equal(t, "Arroz", order.Items[0].Nombre)
}

func TestCheckout_RejectedKeepsCart(t *testing.T) {
	c, api := newLiveClient(t)
	api.mu.Lock()
	api.orderCode = http.StatusUnauthorized
	api.mu.Unlock()
	s := filledSession()
	s.Token = "expired"

	_, err := c.Checkout(context.Background(), s)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 2, s.Cart.Len())
}

func TestCheckout_OfflineIsSimulated(t *testing.T) {
	c := newDeadClient(t)
	s := filledSession()
	s.Token = DemoToken

	res, err := c.Checkout(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Simulated)
	assert.Equal(t, "15.90", res.Total.StringFixed(2))
	assert.Zero(t, res.OrderID)
	assert.True(t, s.Cart.IsEmpty())
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	c := newDeadClient(t)
	for i := 0; i < 5; i++ {
		catalog, err := c.Products(context.Background(), "")
		require.NoError(t, err)
		assert.True(t, catalog.Offline)
	}
	assert.Equal(t, "open", c.breaker.State().String())
}
