// Package store persists named enclosure calculations.
//
// A [Calculation] records the driver parameters a user entered (and the
// free text they were extracted from, if any) together with the box that
// was designed for them. Names are unique: saving under an existing name
// replaces the earlier record with a fresh ID and timestamp.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process, for tests and the API server without persistence
//   - [FileStore]: a single JSON file, the CLI default
//   - [MongoStore]: a MongoDB collection for shared deployments
//
// # Usage
//
//	s, err := store.NewFileStore("")  // ~/.config/speakerbox/calculations.json
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	calc := store.NewCalculation("living room", driver, design.Result, design.Dimensions)
//	saved, err := s.Save(ctx, calc)
package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
)

// Calculation is a saved design.
type Calculation struct {
	ID           string    `json:"id" bson:"_id" yaml:"id"`
	Name         string    `json:"name" bson:"name" yaml:"name"`
	ParsedText   string    `json:"parsed_text,omitempty" bson:"parsed_text,omitempty" yaml:"parsed_text,omitempty"`
	Fs           float64   `json:"fs" bson:"fs" yaml:"fs"`
	Qts          float64   `json:"qts" bson:"qts" yaml:"qts"`
	Vas          float64   `json:"vas" bson:"vas" yaml:"vas"`
	Topology     string    `json:"topology" bson:"topology" yaml:"topology"`
	WidthCm      float64   `json:"width_cm" bson:"width_cm" yaml:"width_cm"`
	HeightCm     float64   `json:"height_cm" bson:"height_cm" yaml:"height_cm"`
	DepthCm      float64   `json:"depth_cm" bson:"depth_cm" yaml:"depth_cm"`
	VolumeLiters float64   `json:"volume_liters" bson:"volume_liters" yaml:"volume_liters"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
}

// NewCalculation builds an unsaved calculation from a finished design.
func NewCalculation(name string, d enclosure.Driver, res enclosure.Result, dims enclosure.Dimensions) Calculation {
	return Calculation{
		Name:         name,
		Fs:           d.Fs,
		Qts:          d.Qts,
		Vas:          d.Vas,
		Topology:     string(res.Topology),
		WidthCm:      dims.WidthCm,
		HeightCm:     dims.HeightCm,
		DepthCm:      dims.DepthCm,
		VolumeLiters: res.BoxVolumeLiters,
	}
}

// Driver returns the saved driver parameters.
func (c Calculation) Driver() enclosure.Driver {
	return enclosure.Driver{Fs: c.Fs, Qts: c.Qts, Vas: c.Vas}
}

// Dimensions returns the saved box dimensions.
func (c Calculation) Dimensions() enclosure.Dimensions {
	return enclosure.Dimensions{WidthCm: c.WidthCm, HeightCm: c.HeightCm, DepthCm: c.DepthCm}
}

// Validate checks that c is complete enough to be saved.
func (c Calculation) Validate() error {
	if err := errors.ValidateName(c.Name); err != nil {
		return err
	}
	if err := c.Driver().Validate(); err != nil {
		return err
	}
	if _, err := enclosure.ParseTopology(c.Topology); err != nil {
		return err
	}
	if err := c.Dimensions().Validate(); err != nil {
		return err
	}
	return errors.ValidateDimension("volume", c.VolumeLiters)
}

// Store is the persistence interface for saved calculations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts c, replacing any calculation with the same name. The
	// returned copy carries the assigned ID and creation time.
	Save(ctx context.Context, c Calculation) (Calculation, error)

	// List returns all calculations, newest first.
	List(ctx context.Context) ([]Calculation, error)

	// Get returns the calculation with the given ID or a NOT_FOUND error.
	Get(ctx context.Context, id string) (Calculation, error)

	// Delete removes the calculation with the given ID or returns NOT_FOUND.
	Delete(ctx context.Context, id string) error

	Close() error
}

// prepare validates c and stamps a new identity on it.
func prepare(c Calculation, now func() time.Time) (Calculation, error) {
	if err := c.Validate(); err != nil {
		return Calculation{}, err
	}
	t, _ := enclosure.ParseTopology(c.Topology)
	c.Topology = string(t)
	c.ID = uuid.NewString()
	c.CreatedAt = now().UTC()
	return c, nil
}

// sortNewestFirst orders by creation time descending, breaking ties by name
// so listings are stable.
func sortNewestFirst(calcs []Calculation) {
	slices.SortStableFunc(calcs, func(a, b Calculation) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "calculation %q not found", id)
}
