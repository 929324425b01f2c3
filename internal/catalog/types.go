// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog describes the resource kinds the console can manage:
// their record schema, collection path and default service address.
package catalog

import (
	"strings"

	"menagerie/cli/internal/record"
)

// Resource is one manageable resource kind.
type Resource struct {
	// Key identifies the resource on the command line and in config (e.g., "creatures").
	Key string
	// Title is the human-facing name (e.g., "Creature").
	Title string
	// Collection is the path segment of the REST collection (e.g., "pokemon").
	Collection string
	// DefaultBaseURL is used when configuration does not override it.
	DefaultBaseURL string
	// Schema describes the record shape.
	Schema record.Schema
}

// CollectionURL joins a base URL and the collection path.
func (r Resource) CollectionURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + r.Collection
}

// Creatures is the creature resource served by the relational collection service.
var Creatures = Resource{
	Key:            "creatures",
	Title:          "Creature",
	Collection:     "pokemon",
	DefaultBaseURL: "http://localhost:8080",
	Schema: record.Schema{
		Name:   "pokemon",
		IDKind: record.Integer,
		Fields: []record.Field{
			{Name: "name", Label: "Name", Kind: record.Text, Required: true},
			{Name: "type", Label: "Type", Kind: record.Text, Required: true},
			{Name: "hp", Label: "HP", Kind: record.Integer, Required: true},
			{Name: "attack", Label: "Attack", Kind: record.Integer, Required: true},
			{Name: "defense", Label: "Defense", Kind: record.Integer, Required: true},
			{Name: "sp_attack", Label: "Sp. Attack", Kind: record.Integer, Required: true},
			{Name: "sp_defense", Label: "Sp. Defense", Kind: record.Integer, Required: true},
			{Name: "speed", Label: "Speed", Kind: record.Integer, Required: true},
		},
	},
}

// Specimens is the specimen resource served by the document collection service.
var Specimens = Resource{
	Key:            "specimens",
	Title:          "Specimen",
	Collection:     "plants",
	DefaultBaseURL: "http://localhost:8081",
	Schema: record.Schema{
		Name:   "plants",
		IDKind: record.Text,
		Fields: []record.Field{
			{Name: "name", Label: "Name", Kind: record.Text, Required: true},
			{Name: "scientific_name", Label: "Scientific Name", Kind: record.Text, Required: true},
			{Name: "family", Label: "Family", Kind: record.Text, Required: true},
			{Name: "type", Label: "Type", Kind: record.Text, Required: true},
			{Name: "sunlight_required", Label: "Sunlight Required", Kind: record.Text, Required: true},
			{Name: "water_interval", Label: "Water Interval (days)", Kind: record.Integer},
			{Name: "height", Label: "Height (m)", Kind: record.Float},
			{Name: "native", Label: "Native Region", Kind: record.Text, Required: true},
			{Name: "indoor", Label: "Indoor", Kind: record.Boolean},
		},
	},
}
