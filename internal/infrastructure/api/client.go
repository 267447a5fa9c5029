// Package api implementa el pipeline HTTP hacia el backend: un único cliente
// compartido que inyecta el bearer token en cada petición y se recupera de
// expiraciones (401/403) con un refresh single-flight y cola FIFO de
// peticiones en espera.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/medisupply-core/internal/application/dto"
	"github.com/jhoicas/medisupply-core/internal/domain"
	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// TokenSource puerto hacia el estado de sesión. Lo implementa el AuthStore.
type TokenSource interface {
	Tokens() *entity.AuthTokens
	UpdateTokens(patch entity.TokenPatch)
	Logout()
}

// Error respuesta HTTP no exitosa del backend.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s %s", e.Status, e.Code, e.Message)
}

// IsAuth indica si el error es de credenciales (401/403), la clase que
// dispara (o mata) el protocolo de refresh. Un 5xx o un error de red NO es de
// credenciales: ante ese caso la sesión se conserva.
func (e *Error) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Config parámetros del cliente.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client cliente HTTP compartido de la app. Seguro para uso concurrente: el
// refresh es single-flight — exactamente una llamada al endpoint de refresh
// por ráfaga de 401s, el resto espera en cola FIFO.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logger.Logger

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

type refreshResult struct {
	idToken string
	err     error
}

// New construye el cliente. tokens normalmente es el AuthStore.
func New(cfg Config, tokens TokenSource, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// Do ejecuta method path contra el backend serializando body como JSON (si no
// es nil) y decodificando la respuesta en out (si no es nil). Ante un 401/403
// aplica el protocolo de refresh y reintenta la petición UNA sola vez; los
// demás estados de error se propagan como *Error sin tocar la sesión.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar cuerpo: %w", err)
		}
	}

	err := c.attempt(ctx, method, path, payload, c.currentIDToken(), out)
	var apiErr *Error
	if !errors.As(err, &apiErr) || !apiErr.IsAuth() {
		return err
	}

	// 401/403: una petición lógica reintenta como máximo una vez, pase lo
	// que pase con el refresh.
	idToken, claimed, rerr := c.refresh(ctx)
	switch {
	case rerr == nil:
		return c.attempt(ctx, method, path, payload, idToken, out)
	case errors.Is(rerr, domain.ErrNoRefreshToken):
		// sin refresh token no hay recuperación posible: error sintético
		return rerr
	case claimed:
		// quien ejecutó el refresh propaga el error original de su petición
		return err
	default:
		// los que esperaban en cola rechazan con el error del refresh
		return rerr
	}
}

// attempt envía la petición una vez, con bearer si hay id token disponible.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, idToken string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("construir petición: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idToken != "" {
		req.Header.Set("Authorization", "Bearer "+idToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decodificar respuesta de %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) currentIDToken() string {
	if tok := c.tokens.Tokens(); tok != nil {
		return tok.IDToken
	}
	return ""
}

// ── Protocolo de refresh ──────────────────────────────────────────────────────

// refresh coordina el single-flight: la primera petición fallida que observa
// "no hay refresh en curso" lo reclama (claimed=true); las demás se
// estacionan en la cola FIFO y reciben el resultado compartido.
func (c *Client) refresh(ctx context.Context) (idToken string, claimed bool, err error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()
		select {
		case r := <-ch:
			return r.idToken, false, r.err
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	res := c.doRefresh()
	c.settle(res)
	return res.idToken, true, res.err
}

// doRefresh ejecuta la llamada real al endpoint de refresh. Aquí vive la
// distinción deliberada entre "credenciales inválidas" (401/403 del refresh →
// logout) y "servidor/red rotos" (cualquier otra clase → la sesión se
// conserva; no castigamos al usuario por un backend intermitente).
func (c *Client) doRefresh() refreshResult {
	tok := c.tokens.Tokens()
	if tok == nil || tok.RefreshToken == "" {
		c.log.Warn().Msg("401 sin refresh token: cerrando sesión")
		c.tokens.Logout()
		return refreshResult{err: domain.ErrNoRefreshToken}
	}

	resp, err := c.refreshCall(tok.RefreshToken)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.IsAuth() {
			c.log.Warn().Int("status", apiErr.Status).Msg("refresh token inválido: cerrando sesión")
			c.tokens.Logout()
		} else {
			c.log.Warn().Err(err).Msg("refresh falló sin invalidar credenciales, se conserva la sesión")
		}
		return refreshResult{err: err}
	}

	// El endpoint no rota el refresh token: se conserva el original.
	c.tokens.UpdateTokens(entity.TokenPatch{
		AccessToken: &resp.AccessToken,
		IDToken:     &resp.IDToken,
		ExpiresIn:   &resp.ExpiresIn,
		TokenType:   &resp.TokenType,
	})
	c.log.Debug().Msg("tokens renovados")
	return refreshResult{idToken: resp.IDToken}
}

// refreshCall llama POST /auth/refresh directamente, fuera del pipeline de
// interceptación (sin bearer y sin reintento ante 401) para no disparar
// refreshes recursivos. Sin timeout propio: aplica el del http.Client.
func (c *Client) refreshCall(refreshToken string) (*dto.RefreshResponse, error) {
	payload, err := json.Marshal(dto.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("serializar refresh: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("construir refresh: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /auth/refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}
	var out dto.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decodificar refresh: %w", err)
	}
	return &out, nil
}

// settle libera el flag y resuelve/rechaza los waiters en el orden en que se
// encolaron (FIFO). Cada waiter reintenta después su propia petición, así que
// el orden de término de esos reintentos no está garantizado.
func (c *Client) settle(res refreshResult) {
	c.mu.Lock()
	ws := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()
	for _, ch := range ws {
		ch <- res
	}
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var body dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}
