package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ethanbaker/attio-relay/internal/attio"
	"github.com/ethanbaker/attio-relay/internal/interop"
	"github.com/ethanbaker/attio-relay/internal/relay"
	"github.com/ethanbaker/attio-relay/pkg/sdk"
	"gopkg.in/yaml.v3"
)

const (
	OP_SCHEMA = "schema"
	OP_DEAL   = "deal"
)

// options are the parsed command line flags
type options struct {
	op         string // Operation to run (schema|deal)
	object     string // Object slug for schema
	attributes string // Raw JSON object of deal attributes
	match      string // Matching attribute slug for deal
	output     string // Output format (json|yaml|table)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "[COMMANDLINE]: %s\n", err)
		os.Exit(2)
	}

	i, err := interop.NewInteroperability()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[COMMANDLINE]: failed to create interop: %s\n", err)
		os.Exit(1)
	}
	defer i.Shutdown()

	// Script mode still passes the credential per call, it is only sourced from the environment
	credential := i.Config.Get("ATTIO_API_KEY")
	if credential == "" {
		i.Logger.Warn("[COMMANDLINE]: ATTIO_API_KEY is not set, calls will be rejected")
	}

	result := run(context.Background(), i.Relay, credential, opts)

	if err := render(os.Stdout, opts, result); err != nil {
		i.Logger.Errorf("[COMMANDLINE]: failed to render output: %s", err)
		i.Shutdown()
		os.Exit(1)
	}

	if !result.OK() {
		i.Shutdown()
		os.Exit(1)
	}
}

// parseFlags reads and checks the command line
func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("commandline", flag.ContinueOnError)
	fs.StringVar(&opts.op, "op", OP_SCHEMA, "operation to run: schema or deal")
	fs.StringVar(&opts.object, "object", attio.DEALS_OBJECT, "object slug whose attributes are fetched")
	fs.StringVar(&opts.attributes, "attributes", "", "deal attributes as a JSON object")
	fs.StringVar(&opts.match, "match", "", "attribute slug used to match an existing deal")
	fs.StringVar(&opts.output, "o", "json", "output format: json, yaml or table")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch opts.op {
	case OP_SCHEMA, OP_DEAL:
	default:
		return nil, fmt.Errorf("unknown operation %q", opts.op)
	}

	switch opts.output {
	case "json", "yaml", "table":
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.output)
	}

	return opts, nil
}

// run executes the selected operation through the same service the gateway uses
func run(ctx context.Context, service *relay.Service, credential string, opts *options) relay.Result {
	switch opts.op {
	case OP_DEAL:
		return service.AssertDeal(ctx, &sdk.AssertDealRequest{
			AttioAPIKey:       credential,
			DealAttributes:    json.RawMessage(opts.attributes),
			MatchingAttribute: opts.match,
		})

	default:
		return service.GetObjectDefinition(ctx, &sdk.GetObjectDefinitionRequest{
			AttioAPIKey: credential,
			ObjectSlug:  opts.object,
		})
	}
}

// render writes result in the requested format. Failures always print the error envelope as JSON
func render(w io.Writer, opts *options, result relay.Result) error {
	if !result.OK() || opts.output == "json" {
		_, err := fmt.Fprintf(w, "%s\n", result.Body)
		return err
	}

	var value any
	switch opts.op {
	case OP_DEAL:
		record, err := attio.DecodeRecord(result.Body)
		if err != nil {
			return err
		}
		if opts.output == "table" {
			return renderRecord(w, record)
		}
		value = record

	default:
		attributes, err := attio.DecodeAttributes(result.Body)
		if err != nil {
			return err
		}
		if opts.output == "table" {
			return renderAttributes(w, opts.object, attributes)
		}
		value = attributes
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}

func renderAttributes(w io.Writer, object string, attributes []attio.Attribute) error {
	fmt.Fprintf(w, "Attributes for '%s':\n", object)
	for _, a := range attributes {
		if _, err := fmt.Fprintf(w, "  - Slug: %s, Title: %s, Type: %s\n", a.APISlug, a.Title, a.Type); err != nil {
			return err
		}
	}
	return nil
}

func renderRecord(w io.Writer, record *attio.Record) error {
	fmt.Fprintf(w, "Deal %s\n", record.ID.RecordID)
	if record.WebURL != "" {
		fmt.Fprintf(w, "  URL: %s\n", record.WebURL)
	}
	_, err := fmt.Fprintf(w, "  Created: %s\n  Values: %d attributes\n", record.CreatedAt, len(record.Values))
	return err
}
