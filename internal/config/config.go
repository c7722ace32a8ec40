// Package config reads and writes bow model files and provides example bows.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go"
	"gopkg.in/yaml.v3"

	"github.com/bow-simulation/virtualbow-sub001/internal/model"
)

// Format is the encoding of a model file, chosen by its extension.
type Format string

const (
	YAML  Format = "yaml"
	HJSON Format = "hjson"
	JSON  Format = "json"
)

func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".hjson":
		return HJSON, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("config: unknown model file extension %q", filepath.Ext(path))
}

// Load reads a model file. Settings missing from the file keep their
// defaults. The model is validated.
func Load(path string) (*model.InputData, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	in, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return in, nil
}

func Decode(data []byte, format Format) (*model.InputData, error) {
	in := &model.InputData{Settings: model.DefaultSettings()}
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, in); err != nil {
			return nil, err
		}
	case HJSON, JSON:
		// hjson decodes into generic values only, json maps them onto the model
		var mdat map[string]interface{}
		if err := hjson.Unmarshal(data, &mdat); err != nil {
			return nil, err
		}
		bytes, err := json.Marshal(mdat)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(bytes, in); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("config: unknown format %q", format)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func Encode(in *model.InputData, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(in)
	case JSON:
		return json.MarshalIndent(in, "", "  ")
	case HJSON:
		bytes, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		var mdat map[string]interface{}
		if err := json.Unmarshal(bytes, &mdat); err != nil {
			return nil, err
		}
		return hjson.Marshal(mdat)
	}
	return nil, fmt.Errorf("config: unknown format %q", format)
}

// Save writes the model in the format given by the file extension.
func Save(path string, in *model.InputData) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(in, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
