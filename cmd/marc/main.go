// Command marc is the CLI tool for JuniperMARC.
// It converts MARC21 batches between formats, indexes them into a
// searchable catalog, and serves the REST API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"

	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/core/marcmaker"
	"github.com/FocuswithJustin/JuniperMARC/internal/api"
	"github.com/FocuswithJustin/JuniperMARC/internal/convert"
	"github.com/FocuswithJustin/JuniperMARC/internal/fileutil"
	"github.com/FocuswithJustin/JuniperMARC/internal/index"
	"github.com/FocuswithJustin/JuniperMARC/internal/logging"
)

const version = "0.3.0"

// CLI defines the command-line interface for marc.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log output format (json, text)" default:"json" enum:"json,text"`

	Dump    DumpCmd    `cmd:"" help:"Print records in MARCMaker mnemonic form"`
	Convert ConvertCmd `cmd:"" help:"Convert records between formats"`
	Count   CountCmd   `cmd:"" help:"Count records in batch files"`
	Index   IndexGroup `cmd:"" help:"Catalog index operations"`
	Serve   ServeCmd   `cmd:"" help:"Start REST API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// IndexGroup contains catalog index operations.
type IndexGroup struct {
	Build  IndexBuildCmd  `cmd:"" help:"Add batch files to a catalog index"`
	Search IndexSearchCmd `cmd:"" help:"Search a catalog index"`
}

// resolveFormat picks a record format from an explicit override, or from
// the path's extension after peeling any compression suffix.
func resolveFormat(path, override string) (convert.Format, error) {
	if override != "" {
		return convert.ParseFormat(override)
	}
	if path == "-" {
		return "", fmt.Errorf("cannot guess a format for stdio, pass an explicit format flag")
	}
	name := path
	for {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".xz" || ext == ".gz" {
			name = strings.TrimSuffix(name, filepath.Ext(name))
			continue
		}
		if f, ok := convert.Extensions[ext]; ok {
			return f, nil
		}
		return "", fmt.Errorf("unrecognized extension %q, pass an explicit format flag", ext)
	}
}

// readRecords loads every record from path. Binary batches read with
// skipMalformed stream record by record so one bad record does not abort
// the batch; other formats parse whole documents.
func readRecords(path string, format convert.Format, skipMalformed bool) ([]*marc.Record, error) {
	in, err := fileutil.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	if format == convert.FormatMARC && skipMalformed {
		r := marc.NewReader(in)
		r.SkipMalformed = true
		var records []*marc.Record
		position := 0
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				logging.RecordError(path, position, err)
				position++
				continue
			}
			records = append(records, rec)
			position++
		}
		return records, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return convert.Decode(data, format)
}

// DumpCmd prints records in MARCMaker mnemonic form.
type DumpCmd struct {
	Path          string `arg:"" help:"Input file (- for stdin)"`
	From          string `short:"f" help:"Input format (marc, xml, json, mrk)"`
	SkipMalformed bool   `help:"Skip binary records that fail to decode"`
}

func (c *DumpCmd) Run() error {
	format, err := resolveFormat(c.Path, c.From)
	if err != nil {
		return err
	}
	records, err := readRecords(c.Path, format, c.SkipMalformed)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(marcmaker.MarshalCollection(records))
	return err
}

// ConvertCmd converts records between formats.
type ConvertCmd struct {
	Path          string `arg:"" help:"Input file (- for stdin)"`
	Output        string `short:"o" default:"-" help:"Output file (- for stdout)"`
	From          string `short:"f" help:"Input format (marc, xml, json, mrk)"`
	To            string `short:"t" help:"Output format (marc, xml, json, mrk)"`
	Encoding      string `default:"utf8" enum:"utf8,marc8" help:"Binary output encoding"`
	SkipMalformed bool   `help:"Skip binary records that fail to decode"`
}

func (c *ConvertCmd) Run() error {
	from, err := resolveFormat(c.Path, c.From)
	if err != nil {
		return err
	}
	to, err := resolveFormat(c.Output, c.To)
	if err != nil {
		return err
	}
	encoding := marc.EncodingUTF8
	if c.Encoding == "marc8" {
		encoding = marc.EncodingMARC8
	}

	records, err := readRecords(c.Path, from, c.SkipMalformed)
	if err != nil {
		return err
	}
	data, err := convert.Encode(records, to, encoding)
	if err != nil {
		return err
	}

	out, err := fileutil.CreateOutput(c.Output)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if c.Output != "-" {
		fmt.Printf("Converted %d records to %s\n", len(records), c.Output)
	}
	return nil
}

// CountCmd counts records in batch files.
type CountCmd struct {
	Paths         []string `arg:"" help:"Input files (- for stdin)"`
	From          string   `short:"f" help:"Input format (marc, xml, json, mrk)"`
	SkipMalformed bool     `help:"Skip binary records that fail to decode"`
}

func (c *CountCmd) Run() error {
	total := 0
	for _, path := range c.Paths {
		format, err := resolveFormat(path, c.From)
		if err != nil {
			return err
		}
		records, err := readRecords(path, format, c.SkipMalformed)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s\t%d\n", path, len(records))
		total += len(records)
	}
	if len(c.Paths) > 1 {
		fmt.Printf("total\t%d\n", total)
	}
	return nil
}

// IndexBuildCmd adds batch files to a catalog index.
type IndexBuildCmd struct {
	Catalog string   `default:"catalog.db" type:"path" help:"Catalog database path"`
	Paths   []string `arg:"" type:"existingfile" help:"Binary MARC batch files"`
}

func (c *IndexBuildCmd) Run() error {
	ix, err := index.Open(c.Catalog)
	if err != nil {
		return err
	}
	defer ix.Close()

	ctx := context.Background()
	totalAdded, totalSkipped := 0, 0
	for _, path := range c.Paths {
		in, err := fileutil.OpenInput(path)
		if err != nil {
			return err
		}
		r := marc.NewReader(in)
		r.SkipMalformed = true
		added, skipped, err := ix.AddBatch(ctx, r, filepath.Base(path))
		in.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s\t%d added\t%d skipped\n", path, added, skipped)
		totalAdded += added
		totalSkipped += skipped
	}
	if len(c.Paths) > 1 {
		fmt.Printf("total\t%d added\t%d skipped\n", totalAdded, totalSkipped)
	}
	return nil
}

// IndexSearchCmd searches a catalog index.
type IndexSearchCmd struct {
	Catalog       string `default:"catalog.db" type:"path" help:"Catalog database path"`
	ControlNumber string `name:"control-number" help:"Exact control number"`
	Title         string `help:"Title substring"`
	Author        string `help:"Author substring"`
	ISBN          string `name:"isbn" help:"Exact ISBN"`
	ISSN          string `name:"issn" help:"Exact ISSN"`
	PubYear       string `name:"pub-year" help:"Exact publication year"`
	Limit         int    `default:"20" help:"Maximum number of results"`
	JSON          bool   `help:"Emit results as JSON"`
}

func (c *IndexSearchCmd) Run() error {
	ix, err := index.Open(c.Catalog)
	if err != nil {
		return err
	}
	defer ix.Close()

	entries, err := ix.Search(context.Background(), index.Query{
		ControlNumber: c.ControlNumber,
		Title:         c.Title,
		Author:        c.Author,
		ISBN:          c.ISBN,
		ISSN:          c.ISSN,
		PubYear:       c.PubYear,
		Limit:         c.Limit,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\t%s\t%s:%d\n", e.ControlNumber, e.Title, e.Author, e.SourceFile, e.Position)
	}
	fmt.Fprintf(os.Stderr, "%d results\n", len(entries))
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port          int      `default:"8081" help:"HTTP server port"`
	Catalog       string   `type:"path" help:"Catalog database path backing /search"`
	AllowedOrigin []string `name:"allowed-origin" help:"Allowed CORS origin (repeatable, empty allows all)"`
	TLSCert       string   `name:"tls-cert" type:"path" help:"TLS certificate file"`
	TLSKey        string   `name:"tls-key" type:"path" help:"TLS private key file"`
}

func (c *ServeCmd) Run() error {
	return api.Start(api.Config{
		Port:           c.Port,
		IndexPath:      c.Catalog,
		AllowedOrigins: c.AllowedOrigin,
		TLS: api.TLSConfig{
			Enabled:  c.TLSCert != "" || c.TLSKey != "",
			CertFile: c.TLSCert,
			KeyFile:  c.TLSKey,
		},
	})
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := index.GetInfo()
	fmt.Printf("marc version %s (sqlite driver: %s, %s)\n", version, info.DriverName, info.DriverType)
	return nil
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatJSON
	if CLI.LogFormat == "text" {
		format = logging.FormatText
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("marc"),
		kong.Description("JuniperMARC - MARC21 batch codec and catalog tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
