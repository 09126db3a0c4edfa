//go:build !tinygo

package config

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"ctrlloop-go/errcode"
)

// Load overlays a YAML document on the compiled-in config of the board it
// names (or DefaultBoard), then validates. Unknown keys are rejected.
func Load(r io.Reader) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	var head struct {
		Board string `yaml:"board"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return Config{}, errcode.Wrap(errcode.InvalidParams, "config.load", err)
	}
	cfg, err := ForBoard(head.Board)
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errcode.Wrap(errcode.InvalidParams, "config.load", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
