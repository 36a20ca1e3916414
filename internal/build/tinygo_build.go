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

// Command tinygo_build compiles a codegen plugin to WebAssembly with
// TinyGo. Tool paths default to the ones found on $PATH.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/pflag"
)

var (
	output   = pflag.StringP("output", "o", "", "Path of the .wasm module to write")
	chdir    = pflag.String("chdir", ".", "Directory holding the plugin's main package")
	tinygo   = pflag.String("tinygo", "", "TinyGo binary (default: tinygo on $PATH)")
	goSdkBin = pflag.String("go-sdk-bin", "", "Directory holding the go binary TinyGo runs")
	wasmOpt  = pflag.String("wasm-opt", "", "wasm-opt binary used by TinyGo")
)

func main() {
	pflag.Parse()
	if err := build(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func build() error {
	if *output == "" {
		return fmt.Errorf("no output path specified (set --output=)")
	}
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}

	tinygoPath := *tinygo
	if tinygoPath == "" {
		if tinygoPath, err = exec.LookPath("tinygo"); err != nil {
			return err
		}
	}

	tinygoArgs := []string{
		"build",
		"-o=" + absPath(pwd, *output),
		"-target=wasip1",
		"-buildmode=c-shared",
		"-no-debug",
	}
	tinygoArgs = append(tinygoArgs, pflag.Args()...)

	cmd := exec.Command(absPath(pwd, tinygoPath), tinygoArgs...)
	cmd.Env = os.Environ()
	if *goSdkBin != "" {
		cmd.Env = append(cmd.Env, "PATH="+absPath(pwd, *goSdkBin))
	}
	if *wasmOpt != "" {
		cmd.Env = append(cmd.Env, "WASMOPT="+absPath(pwd, *wasmOpt))
	}
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		cmd.Env = append(cmd.Env, "HOME="+filepath.Join(tmp, "tinygo-home"))
	}
	cmd.Dir = absPath(pwd, *chdir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func absPath(pwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(pwd, path)
}
