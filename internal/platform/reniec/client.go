// Package reniec queries the national identity registry for person data by
// DNI. It backs the patient form autofill; lookup failure is reported to the
// caller and never blocks patient registration.
package reniec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
)

// Person holds the registry data for one DNI.
type Person struct {
	DNI            string `json:"dni"`
	FirstName      string `json:"nombres"`
	PaternalName   string `json:"apellido_paterno"`
	MaternalName   string `json:"apellido_materno"`
	FullName       string `json:"nombre_completo,omitempty"`
	BirthDate      string `json:"fecha_nacimiento,omitempty"`
	VerificationOK bool   `json:"-"`
}

// Client calls the configured registry endpoint with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Enabled reports whether a registry URL is configured.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// Lookup fetches person data for the given 8-digit DNI.
func (c *Client) Lookup(ctx context.Context, dni string) (*Person, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("registry lookup not configured: %w", apperror.ErrValidation)
	}
	if len(dni) != 8 {
		return nil, fmt.Errorf("dni must have 8 digits: %w", apperror.ErrValidation)
	}
	for _, r := range dni {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("dni must be numeric: %w", apperror.ErrValidation)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dni/"+dni, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFoundf("dni %s", dni)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("registry returned %d", resp.StatusCode)
	}

	var p Person
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}
	if p.DNI == "" {
		p.DNI = dni
	}
	if p.FullName == "" {
		p.FullName = p.FirstName + " " + p.PaternalName + " " + p.MaternalName
	}
	return &p, nil
}
