package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

const (
	eventDescriptionFile = "event_description.json"

	// DefaultProductID is the MapChef "all layers" product.
	DefaultProductID = "MA9999"
)

var (
	// ErrOperationInvalid marks a Crash Move Folder that cannot describe an
	// operation. Such folders are skipped.
	ErrOperationInvalid = errors.New("invalid operation")

	// ErrNoMapChefOutput is returned when a product folder holds no MapChef
	// output file yet.
	ErrNoMapChefOutput = errors.New("no mapchef output")
)

type eventDescription struct {
	OperationID         string `json:"operation_id"`
	OperationName       string `json:"operation_name"`
	AffectedCountryISO3 string `json:"affected_country_iso3"`
	CMFDescriptorPath   string `json:"cmf_descriptor_path"`
}

type cmfDescription struct {
	MapProjects     string `json:"map_projects"`
	LayerProperties string `json:"layer_properties"`
}

// crashMoveFolder is the part of a CMF the dashboard reads.
type crashMoveFolder struct {
	Dir             string
	Event           eventDescription
	MapProjects     string
	LayerProperties string
}

func readCrashMoveFolder(fsys fs.FS, dir string) (*crashMoveFolder, error) {
	var event eventDescription
	if err := readJSON(fsys, path.Join(dir, eventDescriptionFile), &event); err != nil {
		return nil, err
	}
	event.OperationID = strings.TrimSpace(event.OperationID)
	if event.OperationID == "" {
		return nil, fmt.Errorf("%w: %s: operation_id is empty", ErrOperationInvalid, dir)
	}
	if strings.TrimSpace(event.CMFDescriptorPath) == "" {
		return nil, fmt.Errorf("%w: %s: cmf_descriptor_path is empty", ErrOperationInvalid, dir)
	}

	descPath, err := resolve(dir, event.CMFDescriptorPath)
	if err != nil {
		return nil, err
	}
	var desc cmfDescription
	if err := readJSON(fsys, descPath, &desc); err != nil {
		return nil, err
	}

	cmf := &crashMoveFolder{Dir: dir, Event: event}
	if cmf.MapProjects, err = resolve(dir, desc.MapProjects); err != nil {
		return nil, err
	}
	if cmf.LayerProperties, err = resolve(dir, desc.LayerProperties); err != nil {
		return nil, err
	}
	return cmf, nil
}

// resolve joins a CMF-relative path onto dir. CMF descriptors are often
// written on Windows, so backslashes are treated as separators.
func resolve(dir, rel string) (string, error) {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, `\`, "/"))
	if rel == "" {
		return "", fmt.Errorf("%w: %s: empty path in cmf description", ErrOperationInvalid, dir)
	}
	p := path.Join(dir, rel)
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: %s: path %q escapes the crash move folder root", ErrOperationInvalid, dir, rel)
	}
	return p, nil
}

func readJSON(fsys fs.FS, name string, v any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOperationInvalid, name, err)
	}
	return nil
}
