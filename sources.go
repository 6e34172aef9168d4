package gtfs

import (
	"fmt"

	"tripplanner.dev/gtfs/model"
)

// Built-in sources. Iteration order is fixed and determines the order
// in which multi-source queries visit them.
var DefaultSources = []model.Source{
	{
		ID:          "krakow1",
		Name:        "Kraków Public Transit",
		URL:         "https://gtfs.ztp.krakow.pl/GTFS_KRK_A.zip",
		Description: "Municipal Public Transport in Kraków",
	},
	{
		ID:          "krakow2",
		Name:        "Kraków Public Transit",
		URL:         "https://gtfs.ztp.krakow.pl/GTFS_KRK_M.zip",
		Description: "Municipal Public Transport in Kraków",
	},
	{
		ID:          "krakow3",
		Name:        "Kraków Public Transit",
		URL:         "https://gtfs.ztp.krakow.pl/GTFS_KRK_T.zip",
		Description: "Municipal Public Transport in Kraków",
	},
	{
		ID:          "ald",
		Name:        "Małopolska Regional Transit Autobusy",
		URL:         "https://kolejemalopolskie.com.pl/rozklady_jazdy/ald-gtfs.zip",
		Description: "Regional bus services in Małopolska",
	},
	{
		ID:          "kml",
		Name:        "Małopolska Regional Transit Koleje",
		URL:         "https://kolejemalopolskie.com.pl/rozklady_jazdy/kml-ska-gtfs.zip",
		Description: "Regional train services in Małopolska",
	},
}

// Immutable, ordered set of known sources.
type Registry struct {
	sources []model.Source
	byID    map[string]model.Source
}

func NewRegistry(sources []model.Source) (*Registry, error) {
	r := &Registry{
		sources: make([]model.Source, 0, len(sources)),
		byID:    make(map[string]model.Source, len(sources)),
	}

	for _, s := range sources {
		if s.ID == "" {
			return nil, fmt.Errorf("source %q has no id", s.Name)
		}
		if s.URL == "" {
			return nil, fmt.Errorf("source %s has no url", s.ID)
		}
		if _, found := r.byID[s.ID]; found {
			return nil, fmt.Errorf("duplicate source id %s", s.ID)
		}
		r.sources = append(r.sources, s)
		r.byID[s.ID] = s
	}

	return r, nil
}

// Registry of the built-in sources.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSources)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(id string) (model.Source, error) {
	s, found := r.byID[id]
	if !found {
		return model.Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return s, nil
}

func (r *Registry) List() []model.Source {
	out := make([]model.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		ids = append(ids, s.ID)
	}
	return ids
}
