package collector

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"rdsdash/internal/records"
)

// MapChef error messages recognised in layer output.
const (
	MessageDatasourceNone     = "Unable to find dataset for this layer"
	MessageDatasourceMultiple = "Found multiple datasets which match this layer"
	MessageSchemaInvalid      = "Data schema check failed"
)

var messageResults = map[string]records.Result{
	MessageDatasourceNone:     records.ResultFail,
	MessageDatasourceMultiple: records.ResultPassWithWarnings,
	MessageSchemaInvalid:      records.ResultPassWithWarnings,
}

// significance orders the verdicts a single layer can get from its
// messages; an unrecognised message is ERROR.
var significance = map[records.Result]int{
	records.ResultPass:             0,
	records.ResultPassWithWarnings: 1,
	records.ResultFail:             2,
	records.ResultError:            3,
}

// Layer is one layer of the principal map frame in a MapChef output file.
type Layer struct {
	Name          string   `json:"name"`
	ErrorMessages []string `json:"error_messages"`
}

// Result maps the layer's MapChef messages to a verdict: no messages is
// PASS, otherwise the most significant mapped result wins.
func (l Layer) Result() records.Result {
	result := records.ResultPass
	for _, msg := range l.ErrorMessages {
		r, ok := messageResults[strings.TrimSpace(msg)]
		if !ok {
			r = records.ResultError
		}
		if significance[r] > significance[result] {
			result = r
		}
	}
	return result
}

type mapFrame struct {
	Name   string  `json:"name"`
	Layers []Layer `json:"layers"`
}

// Product is a MapChef output file for one product iteration.
type Product struct {
	MapNumber         string      `json:"mapnumber"`
	Name              string      `json:"product"`
	Version           json.Number `json:"version_num"`
	PrincipalMapFrame string      `json:"principal_map_frame"`
	MapFrames         []mapFrame  `json:"map_frames"`
	File              string      `json:"-"`
}

// PrincipalLayers returns the layers of the principal map frame.
func (p *Product) PrincipalLayers() ([]Layer, error) {
	for _, f := range p.MapFrames {
		if f.Name == p.PrincipalMapFrame {
			return f.Layers, nil
		}
	}
	return nil, fmt.Errorf("%s: principal map frame %q not found", p.File, p.PrincipalMapFrame)
}

// latestProduct reads the newest MapChef output in dir. MapChef file names
// sort by iteration, so the lexicographically greatest *.json is the latest.
func latestProduct(fsys fs.FS, dir string) (*Product, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMapChefOutput, dir)
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	p := &Product{File: latest}
	if err := readJSON(fsys, latest, p); err != nil {
		return nil, err
	}
	return p, nil
}

type layerProperties struct {
	LayerProperties []struct {
		Name string `json:"name"`
	} `json:"layerProperties"`
}

// plannedLayers returns the layer names MapChef would produce, from the
// layerProperties.json of the CMF.
func plannedLayers(fsys fs.FS, name string) ([]string, error) {
	var lp layerProperties
	if err := readJSON(fsys, name, &lp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(lp.LayerProperties))
	for _, l := range lp.LayerProperties {
		if n := strings.TrimSpace(l.Name); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}
