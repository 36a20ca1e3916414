// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	tpb "github.com/tech-paws/tech-paws-buffers-generator-sub000"
)

// batchConfig lists (src, dest) pairs per target language. Paths are
// relative to the directory holding the config file.
type batchConfig struct {
	Rust   []batchEntry `yaml:"rust"`
	Swift  []batchEntry `yaml:"swift"`
	Kotlin []batchEntry `yaml:"kotlin"`
	Dart   []batchEntry `yaml:"dart"`
}

type batchEntry struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
}

func (c *batchConfig) entries(lang tpb.Lang) []batchEntry {
	switch lang {
	case tpb.LANG_RUST:
		return c.Rust
	case tpb.LANG_SWIFT:
		return c.Swift
	case tpb.LANG_KOTLIN:
		return c.Kotlin
	case tpb.LANG_DART:
		return c.Dart
	}
	return nil
}

func loadBatchConfig(buf []byte) (*batchConfig, error) {
	var config batchConfig
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

type cmdYaml struct{}

func (*cmdYaml) help() *commandHelp {
	return &commandHelp{
		usage:   "yaml CONFIG",
		summary: "Generate every schema listed in a batch config",
	}
}

func (*cmdYaml) flags(flags *pflag.FlagSet) {}

func (cmd *cmdYaml) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		return usage("expected exactly one config path, got %d", len(argv))
	}
	configPath := argv[0]
	buf, err := os.ReadFile(configPath)
	if err != nil {
		return fail(err)
	}
	config, err := loadBatchConfig(buf)
	if err != nil {
		logger.Printf("[ERROR] %s: %v", configPath, err)
		return EXIT_PARSE
	}
	baseDir := filepath.Dir(configPath)

	type pending struct {
		dest    string
		content []byte
	}
	var outputs []pending
	for _, lang := range tpb.Langs {
		for _, entry := range config.entries(lang) {
			if entry.Src == "" || entry.Dest == "" {
				logger.Printf("[ERROR] %s: %v entry needs both src and dest", configPath, lang)
				return EXIT_PARSE
			}
			file, _, rc := parseSchema(filepath.Join(baseDir, entry.Src))
			if rc != EXIT_OK {
				return rc
			}
			out, err := tpb.GenerateFile(file, lang)
			if err != nil {
				return fail(fmt.Errorf("%s: %w", entry.Src, err))
			}
			warn(out.Warnings)
			outputs = append(outputs, pending{
				dest:    filepath.Join(baseDir, entry.Dest),
				content: []byte(out.Source),
			})
		}
	}

	for _, out := range outputs {
		if err := writeFileAtomic(out.dest, out.content); err != nil {
			return fail(err)
		}
	}
	return EXIT_OK
}
