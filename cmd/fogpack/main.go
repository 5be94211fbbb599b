// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

// fogpack is a small inspection and authoring tool for fogpack
// documents and schemas.
//
//	fogpack inspect FILE     decode a document and print its contents
//	fogpack hash FILE        print a document's hash
//	fogpack schema FILE      build a schema document from a JSONC or
//	                         YAML definition and write the encoded form
//
// Schema definitions are the schema document's map written as JSONC
// or YAML. Binary values (e.g. compression dictionaries) are written
// as strings with a "base64:" prefix.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/schema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "inspect":
		err = cmdInspect(os.Args[2:])
	case "hash":
		err = cmdHash(os.Args[2:])
	case "schema":
		err = cmdSchema(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "fogpack: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fogpack: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fogpack <inspect|hash|schema> [flags] FILE")
}

func cmdInspect(args []string) error {
	flags := pflag.NewFlagSet("inspect", pflag.ExitOnError)
	raw := flags.Bool("raw", false, "treat the file as a bare encoded value, not a document frame")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("inspect needs exactly one file")
	}
	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return err
	}

	if *raw {
		diag, err := codec.Diagnose(data)
		if err != nil {
			return err
		}
		fmt.Println(diag)
		return nil
	}

	schemaHash, err := schema.GetDocSchema(data)
	if err != nil {
		return err
	}
	if schemaHash == nil {
		fmt.Println("schema: none")
		doc, err := schema.NewNoSchema().DecodeDoc(data)
		if err != nil {
			return err
		}
		fmt.Printf("hash: %s\n", doc.Hash())
		fmt.Printf("signatures: %d\n", len(doc.Signatures()))
		fmt.Println(codec.DiagnoseValue(doc.Value()))
		return nil
	}
	// Without the schema document itself we cannot validate, but we
	// can still show the binding and the decoded body.
	fmt.Printf("schema: %s\n", schemaHash)
	frameless, err := codec.Diagnose(data[4:])
	if err == nil {
		fmt.Println(frameless)
	} else {
		fmt.Fprintln(os.Stderr, "body is compressed or signed; full decode needs the schema")
	}
	return nil
}

func cmdHash(args []string) error {
	flags := pflag.NewFlagSet("hash", pflag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("hash needs exactly one file")
	}
	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return err
	}
	doc, err := schema.NewNoSchema().DecodeDoc(data)
	if err != nil {
		return err
	}
	fmt.Println(doc.Hash())
	return nil
}

func cmdSchema(args []string) error {
	flags := pflag.NewFlagSet("schema", pflag.ExitOnError)
	output := flags.StringP("output", "o", "", "write the encoded schema document here (default: input name with .fog)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("schema needs exactly one definition file")
	}
	path := flags.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var value any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		value, err = parseYAMLDefinition(data)
	default:
		value, err = parseJSONCDefinition(data)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	root, err := definitionToMap(value)
	if err != nil {
		return err
	}
	doc, err := schema.NewDocument(root, nil)
	if err != nil {
		return err
	}
	built, err := schema.New(doc)
	if err != nil {
		return err
	}

	_, encoded, err := schema.NewNoSchema().EncodeDoc(doc)
	if err != nil {
		return err
	}
	out := *output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".fog"
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s\n", built.Hash())
	return nil
}
