package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"io"
	"os"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/mdwidget/internal/config"
)

const constantsFile = "internal/config/config_generated_constants.go"

func main() {
	constants := flag.Bool("constants", false, "Generate "+constantsFile+" instead of an example config")
	flag.Parse()

	// Create a config with defaults applied
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	var (
		output     []byte
		outputFile string
		err        error
	)
	if *constants {
		output, err = generateConstants(cfg)
		outputFile = constantsFile
	} else {
		output, err = generateExample(cfg)
		outputFile = "config.example.yaml"
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating output: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		outputFile = flag.Arg(0)
	}
	if err := write(outputFile, output, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
}

func write(outputFile string, output []byte, stdout io.Writer) error {
	if outputFile == "-" {
		_, err := stdout.Write(output)
		return err
	}
	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Generated %s\n", outputFile)
	return nil
}

func generateExample(cfg *config.Config) ([]byte, error) {
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	header := "# mdwidget configuration example\n# Copy this file to config.yaml and customize as needed\n\n"
	return append([]byte(header), yamlData...), nil
}

// generateConstants emits one Default<Section><Field> constant per non-empty
// default, so code can refer to defaults without building a Config.
func generateConstants(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by cmd/generate-config. DO NOT EDIT.\n\npackage config\n\nconst (\n")
	collectConstants(&buf, "Default", reflect.ValueOf(cfg).Elem())
	buf.WriteString(")\n")
	return format.Source(buf.Bytes())
}

func collectConstants(buf *bytes.Buffer, prefix string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field, value := t.Field(i), v.Field(i)
		name := prefix + field.Name

		switch value.Kind() {
		case reflect.Struct:
			// Server.Host -> DefaultServerHost
			collectConstants(buf, prefix+field.Name, value)
		case reflect.String:
			if value.String() != "" {
				fmt.Fprintf(buf, "\t%s = %s\n", name, strconv.Quote(value.String()))
			}
		case reflect.Int:
			fmt.Fprintf(buf, "\t%s = %d\n", name, value.Int())
		case reflect.Bool:
			fmt.Fprintf(buf, "\t%s = %t\n", name, value.Bool())
		}
	}
}
