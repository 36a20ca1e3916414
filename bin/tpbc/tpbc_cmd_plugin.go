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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/plugin"
)

const pluginPathEnv = "TPB_PLUGIN_PATH"

type cmdPlugin struct {
	input      string
	outDir     string
	name       string
	pluginPath string
	options    map[string]string
}

func (*cmdPlugin) help() *commandHelp {
	return &commandHelp{
		usage:   "plugin",
		summary: "Run a WebAssembly codegen plugin over a schema",
	}
}

func (cmd *cmdPlugin) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.input, "input", "i", "", "Schema file to compile")
	flags.StringVarP(&cmd.outDir, "output", "o", "", "Directory receiving the plugin's files")
	flags.StringVarP(&cmd.name, "name", "n", "", "Plugin name; loads tpbc-plugin-NAME.wasm")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "Colon-separated plugin directories (default: $"+pluginPathEnv+")")
	flags.StringToStringVar(&cmd.options, "opt", nil, "Plugin option KEY=VALUE, may be repeated")
}

func (cmd *cmdPlugin) run(ctx context.Context, argv []string) int {
	if len(argv) != 0 {
		return usage("unexpected arguments: %q", argv)
	}
	if cmd.input == "" {
		return usage("no input schema specified (set --input=)")
	}
	if cmd.outDir == "" {
		return usage("no output directory specified (set --output=)")
	}
	if cmd.name == "" {
		return usage("no plugin specified (set --name=)")
	}

	file, src, rc := parseSchema(cmd.input)
	if rc != EXIT_OK {
		return rc
	}
	warn(file.Warnings())

	request := plugin.NewRequest(file, src, plugin.SplitPath(cmd.input))
	request.Options = cmd.options
	requestBuf, err := json.Marshal(request)
	if err != nil {
		return fail(err)
	}

	pluginPath, err := cmd.locatePlugin()
	if err != nil {
		return fail(err)
	}
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		return fail(err)
	}

	response, err := runPlugin(ctx, pluginBin, requestBuf)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", filepath.Base(pluginPath), err))
	}
	if response.Error != "" {
		return fail(fmt.Errorf("%s: %s", filepath.Base(pluginPath), strings.TrimRight(response.Error, "\n")))
	}
	if len(response.Files) == 0 {
		return fail(fmt.Errorf("plugin %s did not generate any output files", cmd.name))
	}

	for _, out := range response.Files {
		if err := plugin.CheckPath(out.Path); err != nil {
			return fail(err)
		}
	}
	for _, out := range response.Files {
		outPath := filepath.Join(append([]string{cmd.outDir}, out.Path...)...)
		if err := writeFileAtomic(outPath, []byte(out.Content)); err != nil {
			return fail(err)
		}
	}
	return EXIT_OK
}

func (cmd *cmdPlugin) locatePlugin() (string, error) {
	path := cmd.pluginPath
	if path == "" {
		path = os.Getenv(pluginPathEnv)
	}
	if path == "" {
		return "", fmt.Errorf("no plugin path set, use --plugin-path= or $%s", pluginPathEnv)
	}
	basename := fmt.Sprintf("tpbc-plugin-%s.wasm", cmd.name)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		pluginPath := filepath.Join(dir, basename)
		if _, err := os.Stat(pluginPath); err == nil {
			return pluginPath, nil
		}
	}
	return "", fmt.Errorf("codegen plugin %s not found in plugin path", basename)
}

// runPlugin instantiates a plugin module and performs one generate call.
func runPlugin(ctx context.Context, pluginBin, requestBuf []byte) (*plugin.Response, error) {
	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, err
	}
	moduleConfig := wasm.NewModuleConfig().
		WithStderr(os.Stderr).
		WithStartFunctions("_initialize")
	mod, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, err
	}

	alloc, err := exportedFunction(mod, plugin.AllocateExport)
	if err != nil {
		return nil, err
	}
	dealloc, err := exportedFunction(mod, plugin.DeallocateExport)
	if err != nil {
		return nil, err
	}
	generate, err := exportedFunction(mod, plugin.GenerateExport)
	if err != nil {
		return nil, err
	}
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("module does not export its memory")
	}

	results, err := alloc.Call(ctx, uint64(len(requestBuf)))
	if err != nil {
		return nil, err
	}
	requestPtr := uint32(results[0])
	if requestPtr == 0 {
		return nil, fmt.Errorf("failed to allocate %d bytes for the request", len(requestBuf))
	}
	if !mem.Write(requestPtr, requestBuf) {
		return nil, fmt.Errorf("request buffer out of range")
	}

	results, err = alloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = generate.Call(ctx, uint64(requestPtr), uint64(len(requestBuf)), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint32(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("failed to read response address")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, fmt.Errorf("failed to read response message")
	}

	var response plugin.Response
	if err := json.Unmarshal(responseBuf, &response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if rc != 0 && response.Error == "" {
		response.Error = fmt.Sprintf("generate failed with code %d", rc)
	}

	for _, ptr := range []uint32{requestPtr, responsePtrPtr, responsePtr} {
		if _, err := dealloc.Call(ctx, uint64(ptr)); err != nil {
			return nil, err
		}
	}
	return &response, nil
}

func exportedFunction(mod api.Module, name string) (api.Function, error) {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("module does not export %s", name)
	}
	return fn, nil
}
