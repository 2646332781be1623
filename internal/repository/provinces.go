package repository

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

const defaultProvinceCost = 9000

var argentineProvinces = []string{
	"Santa Fe", "Buenos Aires", "CABA", "Cordoba", "Entre Rios", "Corrientes",
	"Chaco", "Misiones", "Formosa", "Santiago del Estero", "Tucuman", "Salta",
	"Jujuy", "Catamarca", "La Rioja", "San Juan", "San Luis", "Mendoza",
	"La Pampa", "Neuquen", "Rio Negro", "Chubut", "Santa Cruz", "Tierra del Fuego",
}

// DefaultProvinceCosts returns the built-in shipping-company table.
func DefaultProvinceCosts() models.ProvinceCosts {
	costs := make(models.ProvinceCosts, len(argentineProvinces))
	for _, p := range argentineProvinces {
		costs[p] = decimal.NewFromInt(defaultProvinceCost)
	}
	return costs
}

// provinceFile is the layout of the override file:
//
//	provinces:
//	  Santa Fe: 7500
//	  Cordoba: 8200.50
type provinceFile struct {
	Replace   bool               `yaml:"replace"`
	Provinces map[string]float64 `yaml:"provinces"`
}

// LoadProvinceCosts returns the default table merged with the entries of the
// YAML file at path. With replace: true the file is used on its own. An empty
// path yields the defaults.
func LoadProvinceCosts(path string) (models.ProvinceCosts, error) {
	costs := DefaultProvinceCosts()
	if path == "" {
		return costs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read province costs: %w", err)
	}
	return ParseProvinceCosts(data, costs)
}

// ParseProvinceCosts applies a YAML document on top of base.
func ParseProvinceCosts(data []byte, base models.ProvinceCosts) (models.ProvinceCosts, error) {
	var file provinceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse province costs: %w", err)
	}

	out := make(models.ProvinceCosts, len(base)+len(file.Provinces))
	if !file.Replace {
		for k, v := range base {
			out[k] = v
		}
	}
	for name, cost := range file.Provinces {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if cost < 0 {
			return nil, fmt.Errorf("province %q: negative cost %v", name, cost)
		}
		out[name] = decimal.NewFromFloat(cost).Round(2)
	}
	return out, nil
}
