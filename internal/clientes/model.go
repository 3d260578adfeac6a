// Package clientes manages the companies and contacts related to projects.
package clientes

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNameRequired = errors.New("client name or company is required")
)

const (
	TypePromoter     = "Promotora"
	TypeArchitecture = "Arquitectura"
	TypeEngineering  = "Ingeniería"
)

type Client struct {
	ID         string     `json:"id"`
	Name       string     `json:"nombre"`
	Company    string     `json:"empresa"`
	ClientType string     `json:"tipo_cliente"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"telefono,omitempty"`
	City       string     `json:"ciudad,omitempty"`
	Province   string     `json:"provincia,omitempty"`
	Notes      string     `json:"notas,omitempty"`
	CreatedAt  *time.Time `json:"fecha_alta,omitempty"`
}

func (c *Client) normalize() {
	for _, s := range []*string{&c.Name, &c.Company, &c.ClientType, &c.Email, &c.Phone, &c.City, &c.Province, &c.Notes} {
		*s = strings.TrimSpace(*s)
	}
}

// Validate requires at least one of name or company.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Company) == "" {
		return ErrNameRequired
	}
	return nil
}

func (c Client) toDocument() map[string]interface{} {
	return map[string]interface{}{
		"nombre":       c.Name,
		"empresa":      c.Company,
		"tipo_cliente": c.ClientType,
		"email":        c.Email,
		"telefono":     c.Phone,
		"ciudad":       c.City,
		"provincia":    c.Province,
		"notas":        c.Notes,
	}
}

func fromDocument(id string, data map[string]interface{}) Client {
	str := func(k string) string {
		s, _ := data[k].(string)
		return strings.TrimSpace(s)
	}
	c := Client{
		ID:         id,
		Name:       str("nombre"),
		Company:    str("empresa"),
		ClientType: str("tipo_cliente"),
		Email:      str("email"),
		Phone:      str("telefono"),
		City:       str("ciudad"),
		Province:   str("provincia"),
		Notes:      str("notas"),
	}
	if ts, ok := data["fecha_alta"].(time.Time); ok && !ts.IsZero() {
		c.CreatedAt = &ts
	}
	return c
}
